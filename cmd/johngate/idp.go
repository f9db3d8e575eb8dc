package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	authsvc "github.com/dropDatabas3/johngate/internal/http/services/auth"
	"github.com/dropDatabas3/johngate/internal/idp"
	"github.com/dropDatabas3/johngate/internal/util"
	"github.com/dropDatabas3/johngate/internal/validation"
)

func (c *cli) idpCmd() *cobra.Command {
	idpCmd := &cobra.Command{Use: "idp", Short: "Proveedor de identidad (AUTH0_*)"}

	var username string
	check := &cobra.Command{
		Use:   "check",
		Short: "Muestra la configuración del IdP y, con --username, prueba un login",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := idp.LoadConfig()
			if !ok {
				c.print(map[string]any{"configured": false}, "idp: no configurado (se usa login local)")
				return nil
			}
			client := idp.New(&cfg)
			info := map[string]any{
				"configured": true,
				"domain":     client.Domain(),
				"token_url":  client.TokenURL(),
				"userinfo":   client.UserInfoURL(),
				"client_id":  util.MaskID(cfg.ClientID),
				"scope":      cfg.Scope,
				"timeout":    cfg.Timeout.String(),
			}
			if bad := validation.InvalidScopes(cfg.Scope); len(bad) > 0 {
				info["scope_warnings"] = bad
				fmt.Fprintf(cmd.ErrOrStderr(), "WARN: scopes sospechosos en AUTH0_SCOPE: %v\n", bad)
			}
			if username == "" {
				c.print(info, fmt.Sprintf("idp: %s (timeout %s)", client.TokenURL(), cfg.Timeout))
				return nil
			}

			plain, err := c.readPassword()
			if err != nil {
				return err
			}
			res, err := client.Authenticate(cmd.Context(), username, plain)
			var ae *idp.AuthError
			if errors.As(err, &ae) {
				return fmt.Errorf("idp: status=%d %s", ae.Status, ae.Message)
			}
			if err != nil {
				return err
			}
			p := authsvc.Normalize(res.Profile)
			info["profile"] = map[string]string{
				"first_name": p.FirstName,
				"last_name":  p.LastName,
				"email":      p.Email,
			}
			info["token_fields"] = len(res.Tokens.Public())
			c.print(info, fmt.Sprintf("ok: %s %s <%s>", p.FirstName, p.LastName, p.Email))
			return nil
		},
	}
	check.Flags().StringVar(&username, "username", "", "Probar login con este usuario (password por stdin)")
	idpCmd.AddCommand(check)
	return idpCmd
}
