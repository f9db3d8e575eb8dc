// Comando johngate: tareas operativas sobre el store local y el IdP.
//
//	johngate migrate
//	johngate users create --username jona --password-stdin
//	johngate users set-password --username jona --password-stdin
//	johngate users show --username jona
//	johngate idp check [--username u --password-stdin]
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/johngate/internal/config"
	"github.com/dropDatabas3/johngate/internal/store"

	_ "github.com/dropDatabas3/johngate/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/johngate/internal/store/adapters/sqlite"
)

type cli struct {
	configPath string
	out        string // "json" | "text"
	stdin      io.Reader
	stdout     io.Writer

	cfg *config.Config
}

func main() {
	_ = godotenv.Load()

	c := &cli{stdin: os.Stdin, stdout: os.Stdout}
	if err := c.root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "johngate",
		Short:         "CLI operativo de johngate (migraciones, usuarios locales, IdP)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", config.PathFromEnv(), "Archivo de configuración YAML (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&c.out, "out", "text", "Formato de salida: json|text")

	root.AddCommand(c.migrateCmd(), c.usersCmd(), c.idpCmd())
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	return root
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el schema embebido del driver configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(c.stdout, "ok (%s)\n", st.Driver())
			return nil
		},
	}
}

// openStore abre el store configurado. Los comandos de usuarios migran
// antes de operar; migrate lo hace explícitamente.
func (c *cli) openStore(ctx context.Context, migrate bool) (store.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return store.Open(ctx, store.Config{
		Driver:      c.cfg.Storage.Driver,
		DSN:         c.cfg.Storage.DSN,
		MaxConns:    int32(c.cfg.Storage.MaxConns),
		AutoMigrate: migrate,
	})
}

// readPassword toma la primera línea de stdin sin el salto final.
func (c *cli) readPassword() (string, error) {
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password vacía en stdin")
	}
	return line, nil
}

func (c *cli) print(v any, text string) {
	if c.out == "json" {
		b, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(c.stdout, string(b))
		return
	}
	fmt.Fprintln(c.stdout, text)
}
