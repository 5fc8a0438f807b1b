package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
)

const dateLayout = "2006-01-02 15:04:05"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderAccount(w io.Writer, a domain.Account) error {
	tw := newTable(w)

	fmt.Fprintf(tw, "Account number:\t%s\n", a.Number)
	fmt.Fprintf(tw, "Holder:\t%s\n", a.HolderName)
	fmt.Fprintf(tw, "Email:\t%s\n", a.Email)
	fmt.Fprintf(tw, "Phone:\t%s\n", a.Phone)
	fmt.Fprintf(tw, "Address:\t%s\n", a.Address)
	fmt.Fprintf(tw, "Balance:\t%s\n", moneypkg.Format(a.Balance))
	fmt.Fprintf(tw, "Status:\t%s\n", a.Status)
	fmt.Fprintf(tw, "Created:\t%s\n", a.CreatedAt.Format(dateLayout))

	return tw.Flush()
}

func renderBalance(w io.Writer, b domain.BalanceView) error {
	tw := newTable(w)

	fmt.Fprintf(tw, "Account number:\t%s\n", b.Number)
	fmt.Fprintf(tw, "Holder:\t%s\n", b.HolderName)
	fmt.Fprintf(tw, "Status:\t%s\n", b.Status)
	fmt.Fprintf(tw, "Balance:\t%s\n", moneypkg.Format(b.Balance))

	return tw.Flush()
}

func renderHistory(w io.Writer, h domain.History) error {
	fmt.Fprintf(w, "Transaction history of %s (%s)\n\n", h.Number, h.HolderName)

	if len(h.Transactions) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return nil
	}

	tw := newTable(w)

	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tDESCRIPTION")

	for _, t := range h.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			t.Date.Format(dateLayout), t.Type, moneypkg.Format(t.SignedAmount()), t.Description)
	}

	fmt.Fprintln(tw, "\t\t\t")
	fmt.Fprintf(tw, "Total deposits:\t\t%s\t\n", moneypkg.Format(h.TotalDeposits))
	fmt.Fprintf(tw, "Total withdrawals:\t\t%s\t\n", moneypkg.Format(h.TotalWithdrawals))
	fmt.Fprintf(tw, "Net change:\t\t%s\t\n", moneypkg.Format(h.NetChange))

	return tw.Flush()
}

func renderAccounts(w io.Writer, l domain.AccountList) error {
	if l.Count == 0 {
		fmt.Fprintln(w, "No accounts.")
		return nil
	}

	tw := newTable(w)

	fmt.Fprintln(tw, "ACCOUNT NUMBER\tHOLDER\tBALANCE\tSTATUS\tCREATED")

	for a := range l.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.Number, a.HolderName, moneypkg.Format(a.Balance), a.Status, a.CreatedAt.Format(dateLayout))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal accounts: %d\nTotal balance: %s\n", l.Count, moneypkg.Format(l.TotalBalance))

	return nil
}

func renderReconciliation(w io.Writer, r domain.Reconciliation) error {
	tw := newTable(w)

	state := "consistent"
	if !r.Consistent {
		state = "MISMATCH"
	}

	fmt.Fprintf(tw, "Account number:\t%s\n", r.Number)
	fmt.Fprintf(tw, "Stored balance:\t%s\n", moneypkg.Format(r.StoredBalance))
	fmt.Fprintf(tw, "Ledger balance:\t%s\n", moneypkg.Format(r.LedgerBalance))
	fmt.Fprintf(tw, "State:\t%s\n", state)

	return tw.Flush()
}
