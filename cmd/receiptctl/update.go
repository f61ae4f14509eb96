package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipt-analytics/constants"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

type updateFlags struct {
	vendor      string
	date        string
	amount      string
	category    string
	description string
}

func updateCmd() *cobra.Command {
	var f updateFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Correct fields of a stored receipt",
		Long: `Overwrite the given fields of a receipt. Only flags that are set change the
record; extraction is not re-run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid receipt id %q", args[0])
			}
			upd, err := f.build(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := openBackend(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := b.Close(); closeErr != nil {
					slog.Error("failed to close backend", "error", closeErr)
				}
			}()

			rec, err := b.Update(ctx, id, upd)
			if err != nil {
				return err
			}
			return renderReceipts(cmd.OutOrStdout(), []*entity.Receipt{rec})
		},
	}
	cmd.Flags().StringVar(&f.vendor, "vendor", "", "vendor name")
	cmd.Flags().StringVar(&f.date, "date", "", "receipt date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "total amount")
	cmd.Flags().StringVar(&f.category, "category", "", "category or a common synonym")
	cmd.Flags().StringVar(&f.description, "description", "", "free-form note")
	return cmd
}

// build turns the changed flags into a partial update.
func (f updateFlags) build(cmd *cobra.Command) (entity.ReceiptUpdate, error) {
	var upd entity.ReceiptUpdate
	changed := cmd.Flags().Changed
	if changed("vendor") {
		v := f.vendor
		upd.Vendor = &v
	}
	if changed("date") {
		d, err := entity.ParseDate(f.date)
		if err != nil {
			return upd, fmt.Errorf("invalid --date: %w", err)
		}
		upd.Date = &d
	}
	if changed("amount") {
		a, err := decimal.NewFromString(f.amount)
		if err != nil {
			return upd, fmt.Errorf("invalid --amount %q", f.amount)
		}
		upd.Amount = &a
	}
	if changed("category") {
		c, ok := constants.Canonicalize(f.category)
		if !ok {
			return upd, fmt.Errorf("unknown category %q", f.category)
		}
		upd.Category = &c
	}
	if changed("description") {
		d := f.description
		upd.Description = &d
	}
	if upd.IsEmpty() {
		return upd, fmt.Errorf("nothing to update: set at least one of --vendor, --date, --amount, --category, --description")
	}
	return upd, nil
}
