package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ptessari/turnkey/internal/models"
	"github.com/ptessari/turnkey/internal/roomorder"
	"github.com/ptessari/turnkey/internal/shortage"
	"github.com/ptessari/turnkey/internal/store"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	api := router.Group("/api")
	api.GET("/missing-equipment", handleMissingEquipment(db))
	api.GET("/low-stock", handleLowStock(db))
	api.GET("/sessions", handleSessions(db))
	api.GET("/alerts", handleAlerts(db))
	api.POST("/alerts/:id/resolve", handleResolveAlert(db))
	api.GET("/units/:id/layout", handleUnitLayout(db))
}

func handleMissingEquipment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := shortage.MissingEquipment(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"missing": rows})
	}
}

func handleLowStock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := shortage.LowStock(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"low_stock": rows})
	}
}

func handleSessions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := RecentSessions(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": rows})
	}
}

func handleAlerts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := OpenAlerts(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"alerts": rows})
	}
}

func handleResolveAlert(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
			return
		}
		err = ResolveAlert(db, uint(id))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"resolved": id})
	}
}

func handleUnitLayout(db *gorm.DB) gin.HandlerFunc {
	st := store.New(db)
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit id"})
			return
		}
		assignments, err := st.Assignments(uint(id), models.KindChecklist)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		layout := roomorder.Derive(assignments)

		titles := make(map[uint]string, len(assignments))
		for _, a := range assignments {
			if a.Item != nil {
				titles[a.ID] = a.Item.Title
			}
		}
		type layoutItem struct {
			AssignmentID uint   `json:"assignment_id"`
			Title        string `json:"title"`
		}
		type layoutRoom struct {
			Name  string       `json:"name"`
			Items []layoutItem `json:"items"`
		}
		rooms := make([]layoutRoom, len(layout.Rooms))
		for i, r := range layout.Rooms {
			items := make([]layoutItem, len(r.AssignmentIDs))
			for j, aid := range r.AssignmentIDs {
				items[j] = layoutItem{AssignmentID: aid, Title: titles[aid]}
			}
			rooms[i] = layoutRoom{Name: r.Name, Items: items}
		}
		c.JSON(http.StatusOK, gin.H{"unit_id": id, "rooms": rooms})
	}
}
