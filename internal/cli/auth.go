package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mindweave/mindweave/internal/config"
	"github.com/mindweave/mindweave/pkg/cloud"
	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/reconcile"
	"github.com/mindweave/mindweave/pkg/session"
)

// loginCommand creates the login command.
func (c *CLI) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Log in to the cloud map store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := openSessions()
			if err != nil {
				return err
			}
			if existing, _ := sessions.Get(); existing != nil {
				printInfo("Already logged in as %s", existing.User.Email)
				printDetail("Run '%s logout' first to switch accounts", appName)
				return nil
			}

			email, password, err := promptCredentials(args)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client, _, err := cloudClient(cfg)
			if err != nil {
				return err
			}
			result, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			if err := sessions.Set(session.New(result.AccessToken, result.User)); err != nil {
				return err
			}
			printSuccess("Logged in as %s", StyleHighlight.Render(result.User.Email))

			// Reconcile right away so the local collection reflects the
			// account that just logged in.
			hist, err := c.openHistory()
			if err != nil {
				return err
			}
			synced := cloud.NewClient(cfg.Cloud.BaseURL, result.AccessToken)
			outcome := reconcile.New(synced, hist, c.Logger).Sync(cmd.Context())
			switch outcome.Status {
			case reconcile.StatusSessionExpired:
				c.expireSession()
				return nil
			case reconcile.StatusFailed:
				printWarning("%s", outcome.Message)
				return nil
			}
			if outcome.Pushed > 0 {
				printDetail("uploaded %d local map(s)", outcome.Pushed)
			}
			printKeyValue("Total maps", strconv.Itoa(hist.Len()))
			return nil
		},
	}
}

// signupCommand creates the signup command.
func (c *CLI) signupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signup [email]",
		Short: "Create a cloud account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, password, err := promptCredentials(args)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client, _, err := cloudClient(cfg)
			if err != nil {
				return err
			}
			result, err := client.Signup(cmd.Context(), email, password)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			if !result.HasSession {
				printSuccess("Account created")
				printDetail("Confirm your email, then run '%s login'", appName)
				return nil
			}

			sessions, err := openSessions()
			if err != nil {
				return err
			}
			if err := sessions.Set(session.New(result.AccessToken, result.User)); err != nil {
				return err
			}
			printSuccess("Account created, logged in as %s", StyleHighlight.Render(result.User.Email))
			return nil
		},
	}
}

// logoutCommand creates the logout command.
func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := openSessions()
			if err != nil {
				return err
			}
			sess, err := sessions.Get()
			if err != nil {
				return err
			}
			if sess == nil {
				printInfo("Not logged in")
				return nil
			}

			// Server revocation is best effort: the local session goes
			// away regardless.
			cfg, err := config.Load()
			if err == nil {
				client, _, cerr := cloudClient(cfg)
				if cerr == nil {
					if rerr := client.Logout(cmd.Context()); rerr != nil {
						c.Logger.Debug("server logout failed", "error", rerr)
					}
				}
			}

			if err := sessions.Delete(); err != nil {
				return err
			}
			printSuccess("Logged out %s", sess.User.Email)
			return nil
		},
	}
}

// whoamiCommand creates the whoami command.
func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := openSessions()
			if err != nil {
				return err
			}
			sess, err := sessions.Get()
			if err != nil {
				return err
			}
			if sess == nil {
				printInfo("Not logged in")
				return nil
			}
			printKeyValue("Email", sess.User.Email)
			printKeyValue("Since", sess.CreatedAt.Format("Jan 2, 2006 15:04"))
			return nil
		},
	}
}

// promptCredentials reads email (from args or stdin) and password
// (without echo when stdin is a terminal).
func promptCredentials(args []string) (string, string, error) {
	var email string
	reader := bufio.NewReader(os.Stdin)

	if len(args) > 0 {
		email = args[0]
	} else {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "email is required")
	}

	fmt.Print("Password: ")
	var password string
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", "", err
		}
		password = string(raw)
	} else {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		password = strings.TrimSpace(line)
	}
	if password == "" {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "password is required")
	}
	return email, password, nil
}
