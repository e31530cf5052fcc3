package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahulmohankumar24/finch-demo/internal/service"
)

// newClientCmd creates the client command group
func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage the client directory",
	}
	cmd.AddCommand(newClientCreateCmd())
	cmd.AddCommand(newClientListCmd())
	cmd.AddCommand(newClientMattersCmd())
	return cmd
}

func newClientCreateCmd() *cobra.Command {
	var req service.CreateClientRequest

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Add a client to the directory",
		Long: `Add a client to the directory.

The client id is derived from the name: "Jane Doe" becomes jane_doe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]

			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			client, err := svc.CreateClient(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, client)
			}
			fmt.Fprintf(out, "Created client %s (%s)\n", client.ID, client.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.Address, "address", "", "postal address")
	return cmd
}

func newClientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List clients",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			clients, err := svc.ListClients(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, clients)
			}
			if len(clients) == 0 {
				fmt.Fprintln(out, "No clients found. Create one with: finch client create \"Name\"")
				return nil
			}

			w := newTable(out)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE")
			fmt.Fprintln(w, "──\t────\t─────\t─────")
			for _, c := range clients {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, truncate(c.Name, 30), orDash(c.Email), orDash(c.Phone))
			}
			return w.Flush()
		},
	}
}

func newClientMattersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matters <client-id>",
		Short: "List a client's matters, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			matters, err := svc.ListClientMatters(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return printJSON(out, matters)
			}
			if len(matters) == 0 {
				fmt.Fprintf(out, "No matters for %s. Create one with: finch matter create --client %s\n", args[0], args[0])
				return nil
			}
			printMatterTable(out, matters)
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
