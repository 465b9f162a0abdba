package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/AtRiskMedia/pagegrid-go/internal/application/startup"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/security"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(os.Args[2:]); err != nil {
			log.Fatalf("hash-password: %v", err)
		}
		return
	}

	if err := startup.Initialize(); err != nil {
		log.Fatalf("Application startup failed: %v", err)
	}

	log.Println("Application has shut down gracefully.")
}

// hashPassword prints a bcrypt hash for EDITOR_PASSWORD_HASH. The password
// comes from the first argument or, failing that, one line of stdin.
func hashPassword(args []string) error {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
