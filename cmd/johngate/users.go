package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/johngate/internal/security/password"
	"github.com/dropDatabas3/johngate/internal/store"
)

func (c *cli) usersCmd() *cobra.Command {
	users := &cobra.Command{Use: "users", Short: "Usuarios locales"}
	users.AddCommand(c.usersCreateCmd(), c.usersSetPasswordCmd(), c.usersShowCmd())
	return users
}

// policy arma la política de passwords con la blacklist configurada.
func (c *cli) policy() (password.Policy, error) {
	p := password.DefaultPolicy
	if path := c.cfg.Security.PasswordBlacklistPath; path != "" {
		bl, err := password.LoadBlacklist(path)
		if err != nil {
			return p, fmt.Errorf("blacklist: %w", err)
		}
		p.Blacklist = bl
	}
	return p, nil
}

func (c *cli) hashChecked(username string) (string, error) {
	plain, err := c.readPassword()
	if err != nil {
		return "", err
	}
	pol, err := c.policy()
	if err != nil {
		return "", err
	}
	if err := pol.Check(username, plain); err != nil {
		return "", err
	}
	return password.Hash(password.Default, plain)
}

func (c *cli) usersCreateCmd() *cobra.Command {
	var u store.User
	var noPassword bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un usuario local (password por stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			u.Username = strings.TrimSpace(u.Username)
			if u.Username == "" {
				return errors.New("--username es requerido")
			}
			if noPassword {
				u.PasswordHash = password.Unusable()
			} else {
				h, err := c.hashChecked(u.Username)
				if err != nil {
					return err
				}
				u.PasswordHash = h
			}

			st, err := c.openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer st.Close()

			created, err := st.Create(cmd.Context(), u)
			if errors.Is(err, store.ErrConflict) {
				return fmt.Errorf("el usuario %q ya existe", u.Username)
			}
			if err != nil {
				return err
			}
			c.print(userView(created), "created "+created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&u.Username, "username", "", "Username (único)")
	cmd.Flags().StringVar(&u.FirstName, "first-name", "", "Nombre")
	cmd.Flags().StringVar(&u.LastName, "last-name", "", "Apellido")
	cmd.Flags().StringVar(&u.Email, "email", "", "Email")
	cmd.Flags().BoolVar(&noPassword, "no-password", false, "Crear sin credencial local (solo login vía IdP)")
	return cmd
}

func (c *cli) usersSetPasswordCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Reemplaza la password local (por stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("--username es requerido")
			}
			h, err := c.hashChecked(username)
			if err != nil {
				return err
			}
			st, err := c.openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetPassword(cmd.Context(), username, h); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("el usuario %q no existe", username)
				}
				return err
			}
			c.print(map[string]any{"ok": true}, "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username")
	return cmd
}

func (c *cli) usersShowCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Muestra un usuario local (sin el hash)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.GetByUsername(cmd.Context(), strings.TrimSpace(username))
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("el usuario %q no existe", username)
			}
			if err != nil {
				return err
			}
			v := userView(u)
			c.print(v, fmt.Sprintf("%s\t%s\t%s %s\t%s\tlocal_password=%t",
				u.ID, u.Username, u.FirstName, u.LastName, u.Email, v["local_password"]))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username")
	return cmd
}

func userView(u *store.User) map[string]any {
	return map[string]any{
		"id":             u.ID,
		"username":       u.Username,
		"first_name":     u.FirstName,
		"last_name":      u.LastName,
		"email":          u.Email,
		"local_password": password.IsUsable(u.PasswordHash),
		"created_at":     u.CreatedAt,
		"updated_at":     u.UpdatedAt,
	}
}
