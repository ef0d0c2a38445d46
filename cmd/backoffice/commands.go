package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/brizzai/backoffice/internal/report"
	"github.com/brizzai/backoffice/internal/requester"
	"github.com/brizzai/backoffice/internal/token"
	"github.com/brizzai/backoffice/internal/tui"
)

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				username, err = pterm.DefaultInteractiveTextInput.Show("Username")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password = os.Getenv("BACKOFFICE_PASSWORD")
			}
			if password == "" {
				password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
				if err != nil {
					return err
				}
			}

			deps, err := buildClient()
			if err != nil {
				return err
			}
			state, err := deps.client.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			name := username
			if state.User != nil && state.User.Name != "" {
				name = state.User.Name
			}
			pterm.Success.Printfln("Signed in as %s", pterm.LightGreen(name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when empty, or BACKOFFICE_PASSWORD)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildClient()
			if err != nil {
				return err
			}
			deps.client.Logout()
			pterm.Success.Println("Signed out")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildClient()
			if err != nil {
				return err
			}
			state, ok := deps.store.Get()
			if !ok {
				pterm.Warning.Println("Not signed in. Run `backoffice login`.")
				return nil
			}

			data := pterm.TableData{{"Field", "Value"}, {"API", cfg.API.BaseURL}}
			if state.User != nil {
				data = append(data,
					[]string{"User ID", fmt.Sprint(state.User.ID)},
					[]string{"Name", state.User.Name},
					[]string{"Email", state.User.Email},
					[]string{"Role", state.User.Role},
				)
			}
			data = append(data, []string{"Access token", accessTokenStatus(state.Credentials.AccessToken)})
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func accessTokenStatus(raw string) string {
	claims, err := token.Decode(raw)
	if err != nil {
		return pterm.Red("unreadable, will refresh on next request")
	}
	exp := claims.ExpiresAt()
	if claims.Expired(time.Now(), cfg.API.ExpiryMargin) {
		return pterm.Yellow(fmt.Sprintf("expired at %s, will refresh on next request", exp.Local().Format(time.RFC1123)))
	}
	return pterm.LightGreen(fmt.Sprintf("valid until %s", exp.Local().Format(time.RFC1123)))
}

// fetch lists a resource through the authenticated client
func fetch(cmd *cobra.Command, resource string, query []string) ([]any, error) {
	values, err := parseQuery(query)
	if err != nil {
		return nil, err
	}
	deps, err := buildClient()
	if err != nil {
		return nil, err
	}

	records, err := deps.client.ListQuery(cmd.Context(), cfg.ResourcePath(resource), values, resource)
	if err != nil {
		var statusErr *requester.StatusError
		if errors.As(err, &statusErr) && statusErr.Unauthorized() {
			return nil, fmt.Errorf("%w (run `backoffice login`)", err)
		}
		return nil, err
	}
	return records, nil
}

func parseQuery(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid query %q, expected key=value", pair)
		}
		values.Add(key, value)
	}
	return values, nil
}

func newListCmd() *cobra.Command {
	var query []string

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Print the records of a list endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetch(cmd, args[0], query)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				pterm.Info.Printfln("No %s found", args[0])
				return nil
			}

			columns := report.Columns(records)
			data := append(pterm.TableData{columns}, report.Rows(columns, records)...)
			if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
				return err
			}
			pterm.Info.Printfln("%s %s", pterm.LightGreen(len(records)), args[0])
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Query parameter as key=value (repeatable)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		query []string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Write the records of a list endpoint to an Excel file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := args[0]
			if out == "" {
				out = resource + ".xlsx"
			}
			records, err := fetch(cmd, resource, query)
			if err != nil {
				return err
			}
			if err := tui.ExportRecordsToExcelFile(resource, records, out); err != nil {
				return fmt.Errorf("failed to export %s: %w", resource, err)
			}
			pterm.Success.Printfln("Exported %s %s to %s", pterm.LightGreen(len(records)), resource, out)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <resource>.xlsx)")
	return cmd
}

func newBrowseCmd() *cobra.Command {
	var query []string

	cmd := &cobra.Command{
		Use:   "browse <resource>",
		Short: "Browse the records of a list endpoint interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetch(cmd, args[0], query)
			if err != nil {
				return err
			}

			p := tea.NewProgram(tui.NewBrowseModel(args[0], records), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			m, err := p.Run()
			if err != nil {
				return fmt.Errorf("error running browser: %w", err)
			}

			if path, ok := m.(tui.BrowseModel).ExportedTo(); ok {
				pterm.Info.Printfln("Exported %s of %s records to %s",
					pterm.LightGreen(len(m.(tui.BrowseModel).Included())),
					pterm.White(len(records)),
					path)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Query parameter as key=value (repeatable)")
	return cmd
}
