package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/akozlov/bookkeep/internal/adapter/repository/memory"
	postgresRepo "github.com/akozlov/bookkeep/internal/adapter/repository/postgres"
	"github.com/akozlov/bookkeep/internal/domain"
	"github.com/akozlov/bookkeep/internal/usecase"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	expected := []string{"migrate", "verify", "balance", "outbox"}

	for _, name := range expected {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Fatalf("expected subcommand %q, got %v (err %v)", name, cmd, err)
		}
	}
}

func TestMigrateDownFlag(t *testing.T) {
	root := newRootCmd()

	cmd, _, err := root.Find([]string{"migrate"})
	if err != nil {
		t.Fatalf("migrate command missing: %v", err)
	}

	if cmd.Flags().Lookup("down") == nil {
		t.Fatal("expected --down flag on migrate")
	}
}

func TestBalanceRequiresAccountID(t *testing.T) {
	root := newRootCmd()

	cmd, _, err := root.Find([]string{"balance"})
	if err != nil {
		t.Fatalf("balance command missing: %v", err)
	}

	if err := cmd.Args(cmd, []string{}); err == nil {
		t.Fatal("expected error for missing account ID")
	}
	if err := cmd.Args(cmd, []string{"acc-1"}); err != nil {
		t.Fatalf("unexpected error for single argument: %v", err)
	}
}

type seqIDGen struct{ n int }

func (g *seqIDGen) Generate() string {
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

func TestVerifyLedgerReturnsErrorOnInconsistency(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	idGen := &seqIDGen{}

	accountUC := usecase.NewAccountUseCase(store, store.Accounts(), store.Outbox(), idGen)
	entryUC := usecase.NewEntryUseCase(store, store.Accounts(), store.Entries(), store.Outbox(), idGen, nil)
	ledgerUC := usecase.NewLedgerUseCase(store.Accounts(), store.Entries(), nil, "USD")

	cash, err := accountUC.CreateAccount(ctx, usecase.CreateAccountInput{
		Name: "Cash", Type: domain.AccountTypeAsset, Currency: "USD",
	})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	equity, err := accountUC.CreateAccount(ctx, usecase.CreateAccountInput{
		Name: "Owner Equity", Type: domain.AccountTypeEquity, Currency: "USD",
	})
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err = entryUC.PostEntry(ctx, usecase.PostEntryInput{
		Date: jan,
		Lines: []usecase.PostLineInput{
			{AccountID: cash.ID, Side: domain.SideDebit, MinorUnits: 100000, Currency: "USD"},
			{AccountID: equity.ID, Side: domain.SideCredit, MinorUnits: 100000, Currency: "USD"},
		},
	})
	if err != nil {
		t.Fatalf("failed to post entry: %v", err)
	}

	retrier := postgresRepo.NewRetrier(zerolog.Nop())

	var out bytes.Buffer
	if err := verifyLedger(ctx, ledgerUC, retrier, &out, domain.DefaultFormatting()); err != nil {
		t.Fatalf("expected consistent ledger to verify, got %v", err)
	}
	if !strings.Contains(out.String(), "PASSED") {
		t.Fatalf("expected PASSED in output, got %q", out.String())
	}

	store.InjectLine(domain.Line{
		AccountID: equity.ID,
		Side:      domain.SideCredit,
		Amount:    domain.MustNewMoney(1, "USD"),
	}, jan)

	out.Reset()
	err = verifyLedger(ctx, ledgerUC, retrier, &out, domain.DefaultFormatting())
	if !errors.Is(err, usecase.ErrInconsistentLedger) {
		t.Fatalf("expected ErrInconsistentLedger, got %v", err)
	}
	if !strings.Contains(out.String(), "FAILED") {
		t.Fatalf("expected FAILED in output, got %q", out.String())
	}
}
