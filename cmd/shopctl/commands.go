package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/repository/kvstore"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	dataDir         string
	sessionID       string
	secret          string
	comparisonLimit int
	verbose         bool

	store   *kvstore.BadgerStore
	session *usecase.Session
}

// execute runs one shopctl invocation. The store is always closed
// afterwards, even when the command fails.
func execute(args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := c.close(); err == nil {
		err = cerr
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shopctl",
		Short: "Inspect and edit storefront session state stored in a local BadgerDB",
		Long: `shopctl works directly on the key-value data the storefront API keeps
for a session: credential, cart, wishlist, comparison list and theme.

Without --session it uses the un-namespaced keys, the same layout a single
browser profile would have.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.open,
	}

	root.PersistentFlags().StringVar(&c.dataDir, "data", "./data/badger", "BadgerDB directory")
	root.PersistentFlags().StringVar(&c.sessionID, "session", "", "session id (UUID) to operate on")
	root.PersistentFlags().StringVar(&c.secret, "secret", "", "HMAC secret used to verify stored tokens")
	root.PersistentFlags().IntVar(&c.comparisonLimit, "comparison-limit", usecase.DefaultComparisonLimit, "maximum products in the comparison list")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log key-value traffic")

	root.AddCommand(
		c.tokenCmd(),
		c.cartCmd(),
		c.wishlistCmd(),
		c.compareCmd(),
		c.themeCmd(),
		c.navigateCmd(),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command, args []string) error {
	level := "disabled"
	if c.verbose {
		level = "debug"
	}
	logger.InitWithWriter("development", level, cmd.ErrOrStderr())

	prefix := ""
	if c.sessionID != "" {
		id, err := uuid.Parse(c.sessionID)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
		}
		c.sessionID = id.String()
		prefix = kvstore.SessionPrefix(c.sessionID)
	}

	store, err := kvstore.OpenBadger(kvstore.DefaultBadgerConfig(c.dataDir))
	if err != nil {
		return err
	}
	c.store = store

	kv := kvstore.Namespace(store, prefix)
	c.session = usecase.NewSession(cmd.Context(), c.sessionID, kv, usecase.SessionOptions{
		ComparisonLimit:  c.comparisonLimit,
		CredentialSecret: c.secret,
	})
	return nil
}

func (c *cli) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseProduct(arg string) (domain.Product, error) {
	var p domain.Product
	if err := json.Unmarshal([]byte(arg), &p); err != nil {
		return p, fmt.Errorf("product must be a JSON object: %w", err)
	}
	return p, nil
}

// --- token ---

func (c *cli) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Manage the stored credential"}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <token>",
			Short: "Store a credential",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.session.Credentials.Store(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the stored credential",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.session.Credentials.Clear(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Print the user id carried by the stored credential",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if !c.session.Credentials.HasCredential(ctx) {
					fmt.Fprintln(cmd.OutOrStdout(), "no credential stored")
					return nil
				}
				id, ok := c.session.Credentials.UserID(ctx)
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "credential stored, no user id")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			},
		},
	)
	return cmd
}

// --- cart ---

type cartView struct {
	Identified bool              `json:"identified"`
	Items      []domain.LineItem `json:"items"`
	Count      int               `json:"count"`
	Total      string            `json:"total"`
}

func (c *cli) showCart(cmd *cobra.Command) error {
	return printJSON(cmd, cartView(c.session.Cart.View(cmd.Context())))
}

// afterCart prints the cart, or explains why nothing happened.
func (c *cli) afterCart(cmd *cobra.Command, out domain.Outcome[[]domain.LineItem], err error) error {
	if err != nil {
		return err
	}
	if !out.Identified() {
		return errors.New("no signed-in user: store a token carrying sub or userId first")
	}
	return c.showCart(cmd)
}

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cart", Short: "Manage the signed-in user's cart"}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <product-json>",
			Short: "Add one unit of a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := parseProduct(args[0])
				if err != nil {
					return err
				}
				out, err := c.session.Cart.AddToCart(cmd.Context(), p)
				return c.afterCart(cmd, out, err)
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a product line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := c.session.Cart.RemoveFromCart(cmd.Context(), domain.ProductID(args[0]))
				return c.afterCart(cmd, out, err)
			},
		},
		&cobra.Command{
			Use:   "qty <product-id> <quantity>",
			Short: "Set the quantity of a line (minimum 1)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity must be an integer: %w", err)
				}
				out, err := c.session.Cart.UpdateQuantity(cmd.Context(), domain.ProductID(args[0]), n)
				return c.afterCart(cmd, out, err)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := c.session.Cart.ClearCart(cmd.Context())
				return c.afterCart(cmd, out, err)
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the cart with count and total",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.showCart(cmd)
			},
		},
	)
	return cmd
}

// --- wishlist & compare ---

// productList is the common surface of the wishlist and comparison stores.
type productList struct {
	add    func(ctx context.Context, p domain.Product) (bool, error)
	remove func(ctx context.Context, id domain.ProductID) (bool, error)
	clear  func(ctx context.Context) error
	items  func() []domain.Product
}

func productListCmd(use, short string, list func() productList) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}

	show := func(cmd *cobra.Command) error {
		return printJSON(cmd, list().items())
	}
	report := func(cmd *cobra.Command, changed bool, err error) error {
		if err != nil {
			return err
		}
		if !changed {
			fmt.Fprintln(cmd.ErrOrStderr(), "unchanged")
		}
		return show(cmd)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <product-json>",
			Short: "Add a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := parseProduct(args[0])
				if err != nil {
					return err
				}
				changed, err := list().add(cmd.Context(), p)
				return report(cmd, changed, err)
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				changed, err := list().remove(cmd.Context(), domain.ProductID(args[0]))
				return report(cmd, changed, err)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every product",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return report(cmd, true, list().clear(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the products",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return show(cmd)
			},
		},
	)
	return cmd
}

func (c *cli) wishlistCmd() *cobra.Command {
	return productListCmd("wishlist", "Manage the wishlist", func() productList {
		w := c.session.Wishlist
		return productList{add: w.AddToWishlist, remove: w.RemoveFromWishlist, clear: w.ClearWishlist, items: w.Items}
	})
}

func (c *cli) compareCmd() *cobra.Command {
	return productListCmd("compare", "Manage the comparison list", func() productList {
		cl := c.session.Comparison
		return productList{add: cl.AddToComparison, remove: cl.RemoveFromComparison, clear: cl.ClearComparison, items: cl.Items}
	})
}

// --- theme ---

func (c *cli) themeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "theme", Short: "Show or change the colour theme"}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current theme",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), c.session.Theme.Theme())
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Switch between light and dark",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				theme, err := c.session.Theme.ToggleTheme(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), theme)
				return nil
			},
		},
		&cobra.Command{
			Use:       "set <light|dark>",
			Short:     "Set the theme",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{string(domain.ThemeLight), string(domain.ThemeDark)},
			RunE: func(cmd *cobra.Command, args []string) error {
				theme, err := domain.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := c.session.Theme.SetTheme(cmd.Context(), theme); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), theme)
				return nil
			},
		},
	)
	return cmd
}

// --- navigate ---

func (c *cli) navigateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "navigate <path>",
		Short: "Run the route guard for a storefront path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, c.session.Navigation.Navigate(cmd.Context(), args[0]))
		},
	}
}
