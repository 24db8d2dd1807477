package main

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	appdb "github.com/yourorg/healthai/internal/db"
	"github.com/yourorg/healthai/internal/store"
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("==== HealthAI CLI ====")
		fmt.Println("1) Health check API")
		fmt.Println("2) Seed database (create sample user)")
		fmt.Println("3) Cleanup expired reset tokens")
		fmt.Println("4) Force database backup")
		fmt.Println("5) Delete user and all data")
		fmt.Println("6) Exit")
		fmt.Print("Select option: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		switch choice {
		case "1":
			doHealthCheck()
		case "2":
			doSeed()
		case "3":
			doTokenCleanup()
		case "4":
			doBackup()
		case "5":
			doDeleteUser(reader)
		case "6":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Invalid option")
		}
		fmt.Println()
	}
}

func doHealthCheck() {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://127.0.0.1:8080"
	}
	url := strings.TrimRight(base, "/") + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		fmt.Println("Health: ERROR:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Println("Health status:", resp.Status)
}

func openStore() (*store.Store, *sql.DB, bool) {
	db, err := appdb.Connect()
	if err != nil {
		log.Println("DB connect error:", err)
		return nil, nil, false
	}
	if err := appdb.EnsureSchema(db); err != nil {
		log.Println("Ensure schema error:", err)
		db.Close()
		return nil, nil, false
	}
	return store.New(db), db, true
}

func doSeed() {
	st, db, ok := openStore()
	if !ok {
		return
	}
	defer db.Close()

	username := "demo"
	password := "demo1234"
	userID, err := st.RegisterUser(username, password, "demo@example.com")
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			fmt.Println("Seed: user 'demo' already exists")
			return
		}
		fmt.Println("Seed: error:", err)
		return
	}
	fmt.Printf("Seed: created user 'demo' (id=%d) with password 'demo1234'\n", userID)
}

func doTokenCleanup() {
	st, db, ok := openStore()
	if !ok {
		return
	}
	defer db.Close()

	n, err := st.CleanupExpiredTokens()
	if err != nil {
		fmt.Println("Cleanup: error:", err)
		return
	}
	fmt.Printf("Cleanup: removed %d expired reset tokens\n", n)
}

func doBackup() {
	if err := appdb.Backup(true); err != nil {
		fmt.Println("Backup: error:", err)
		return
	}
	fmt.Println("Backup: OK ->", appdb.BackupPath())
}

func doDeleteUser(reader *bufio.Reader) {
	fmt.Print("User ID to delete: ")
	line, _ := reader.ReadString('\n')
	userID, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil || userID <= 0 {
		fmt.Println("Invalid user id")
		return
	}

	fmt.Printf("This removes the user and ALL their records. Type 'yes' to confirm: ")
	confirm, _ := reader.ReadString('\n')
	if strings.TrimSpace(confirm) != "yes" {
		fmt.Println("Aborted")
		return
	}

	st, db, ok := openStore()
	if !ok {
		return
	}
	defer db.Close()

	if err := st.DeleteUserCascade(userID); err != nil {
		fmt.Println("Delete: error:", err)
		return
	}
	fmt.Printf("Delete: user %d and all associated data removed\n", userID)
}
