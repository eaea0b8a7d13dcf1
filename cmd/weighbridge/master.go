package main

import (
	"github.com/spf13/cobra"

	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/service"
	"github.com/google/uuid"
)

func masterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "master",
		Short: "Manage reference data (MASTER role)",
	}
	cmd.PersistentFlags().String("pin", "", "master operator PIN")
	_ = cmd.MarkPersistentFlagRequired("pin")

	cmd.AddCommand(masterListCmd())
	cmd.AddCommand(masterAddPartyCmd("add-supplier", "Register a supplier", (*model.MasterData).AddSupplier))
	cmd.AddCommand(masterAddPartyCmd("add-customer", "Register a customer", (*model.MasterData).AddCustomer))
	cmd.AddCommand(masterAddCargoCmd())
	cmd.AddCommand(masterAddOperatorCmd())
	cmd.AddCommand(masterRemoveOperatorCmd())
	return cmd
}

// withMasterData runs fn against the stored reference lists and persists the
// result when fn mutates them.
func withMasterData(cmd *cobra.Command, mutate bool, fn func(m *model.MasterData) error) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	pin, _ := cmd.Flags().GetString("pin")
	if _, err := requireMasterOp(ctx, store, pin); err != nil {
		return err
	}

	master := loadMasterData(ctx, store)
	if err := fn(&master); err != nil {
		return err
	}
	if !mutate {
		return nil
	}
	return store.PutBlob(ctx, service.BlobMasterData, master)
}

func masterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all reference data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMasterData(cmd, false, func(m *model.MasterData) error {
				cmd.Println("Suppliers:")
				for _, p := range m.Suppliers {
					cmd.Printf("  %s (%s, %s)\n", p.Name, p.Address, p.Contact)
				}
				cmd.Println("Customers:")
				for _, p := range m.Customers {
					cmd.Printf("  %s (%s, %s)\n", p.Name, p.Address, p.Contact)
				}
				cmd.Println("Cargo types:")
				for _, c := range m.CargoTypes {
					cmd.Printf("  %s\n", c)
				}
				cmd.Println("Operators:")
				for _, op := range m.Operators {
					cmd.Printf("  %-16s %s (%s)\n", op.Name, op.Role, op.ID)
				}
				return nil
			})
		},
	}
}

func masterAddPartyCmd(use, short string, add func(m *model.MasterData, name string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMasterData(cmd, true, func(m *model.MasterData) error {
				return add(m, args[0])
			})
		},
	}
}

func masterAddCargoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-cargo <name>",
		Short: "Register a cargo type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMasterData(cmd, true, func(m *model.MasterData) error {
				m.AddCargoType(args[0])
				return nil
			})
		},
	}
}

func masterAddOperatorCmd() *cobra.Command {
	var operatorPIN string

	cmd := &cobra.Command{
		Use:   "add-operator <name>",
		Short: "Register an operator with a 4-digit PIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMasterData(cmd, true, func(m *model.MasterData) error {
				return m.AddOperator(uuid.NewString(), args[0], operatorPIN)
			})
		},
	}
	cmd.Flags().StringVar(&operatorPIN, "operator-pin", "", "PIN for the new operator")
	_ = cmd.MarkFlagRequired("operator-pin")
	return cmd
}

func masterRemoveOperatorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-operator <id>",
		Short: "Remove an operator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMasterData(cmd, true, func(m *model.MasterData) error {
				return m.RemoveOperator(args[0])
			})
		},
	}
}
