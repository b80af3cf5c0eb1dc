//go:build integration

package db

import (
	"os"
	"strconv"
	"testing"
)

// Integration tests require a running MySQL server. Configure it with
// TURNKEY_TEST_DB_HOST and TURNKEY_TEST_DB_PORT; defaults target a local
// server on the standard port.
func testDBAddr(t *testing.T) (string, int) {
	t.Helper()
	host := os.Getenv("TURNKEY_TEST_DB_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := 3306
	if p := os.Getenv("TURNKEY_TEST_DB_PORT"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			t.Fatalf("TURNKEY_TEST_DB_PORT: %v", err)
		}
		port = n
	}
	return host, port
}

func TestCreateMigrateSeed_MySQL(t *testing.T) {
	host, port := testDBAddr(t)

	admin, err := ConnectAdmin(host, port)
	if err != nil {
		t.Skipf("no MySQL server at %s:%d: %v", host, port, err)
	}

	const name = "turnkey_integration_test"
	if err := DropDatabase(admin, name); err != nil {
		t.Fatalf("DropDatabase: %v", err)
	}
	if err := CreateDatabase(admin, name); err != nil {
		t.Fatalf("CreateDatabase: %v", err)
	}
	t.Cleanup(func() { DropDatabase(admin, name) })

	gdb, err := Connect(host, port, name)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if err := SeedCatalog(gdb); err != nil {
		t.Fatalf("SeedCatalog: %v", err)
	}
	if err := SeedDemo(gdb); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
}
