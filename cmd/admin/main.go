package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"tablepoker-server/internal/config"
	"tablepoker-server/internal/jwt"
	"tablepoker-server/pkg/db"
	"tablepoker-server/pkg/ledger"
)

var command = flag.String("c", "balance", "specifies the command (balance, grant, token)")

func main() {
	flag.Parse()
	ctx := context.Background()

	switch *command {
	case "balance":
		playerID := getPlayerID()
		balance, err := openLedger().GetBalance(ctx, playerID)
		if err != nil {
			logrus.WithError(err).Fatal("could not get balance")
		}

		fmt.Printf("%s has $%d\n", playerID, balance)

	case "grant":
		playerID := getPlayerID()
		amount, err := getAmount()
		if err != nil {
			logrus.WithError(err).Fatal("could not get amount")
		}

		if !confirm(fmt.Sprintf("Adjust %s by $%d (Y/n)", playerID, amount)) {
			os.Exit(1)
		}

		balance, err := openLedger().AdjustBalance(ctx, playerID, amount)
		if err != nil {
			logrus.WithError(err).Fatal("could not adjust balance")
		}

		fmt.Printf("%s now has $%d\n", playerID, balance)

	case "token":
		jwt.LoadKeys()
		token, err := jwt.Sign(getPlayerID())
		if err != nil {
			logrus.WithError(err).Fatal("could not sign token")
		}

		fmt.Println(token)

	default:
		logrus.Fatalf("unknown command: %s", *command)
	}
}

func openLedger() ledger.Ledger {
	cfg := config.Instance()
	switch cfg.Ledger.Backend {
	case config.LedgerPostgres:
		return ledger.NewPostgres(db.Instance())
	case config.LedgerRedis:
		return ledger.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	default:
		logrus.Fatalf("the %s ledger can't be managed from outside the server", cfg.Ledger.Backend)
		return nil
	}
}

func getPlayerID() string {
	id, err := getInput("Player ID")
	if err != nil {
		logrus.WithError(err).Fatal("could not get answer")
	}

	if id == "" {
		os.Exit(1)
	}

	return id
}

func getAmount() (int, error) {
	for {
		str, err := getInput("Amount (negative to deduct)")
		if err != nil {
			return 0, err
		}

		amount, err := strconv.Atoi(str)
		if err != nil || amount == 0 {
			_, _ = fmt.Fprintln(os.Stderr, "amount must be a non-zero whole number")
			continue
		}

		return amount, nil
	}
}

// confirm asks before changing anything, unless input is piped in
func confirm(question string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}

	answer, err := getInput(question)
	if err != nil {
		logrus.WithError(err).Fatal("could not get answer")
	}

	return answer == "" || strings.ToLower(answer)[0] == 'y'
}

var stdin = bufio.NewReader(os.Stdin)

func getInput(question string) (string, error) {
	fmt.Printf("%s: ", question)
	str, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	str = strings.TrimRight(str, "\r\n")

	return strings.TrimSpace(str), nil
}
