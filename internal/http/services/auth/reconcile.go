package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/johngate/internal/audit"
	"github.com/dropDatabas3/johngate/internal/observability/logger"
	"github.com/dropDatabas3/johngate/internal/security/password"
	"github.com/dropDatabas3/johngate/internal/store"
)

// Reconciler crea o actualiza el usuario local a partir del perfil
// normalizado de un login delegado.
//
// Logins concurrentes con el mismo username y perfil comparten una sola
// ejecución (singleflight). Entre réplicas la red de seguridad es el índice
// único de username: un ErrConflict en Create se reintenta como update.
type Reconciler struct {
	users store.UserRepository
	sf    singleflight.Group
}

// NewReconciler crea un Reconciler sobre el repositorio dado.
func NewReconciler(users store.UserRepository) *Reconciler {
	return &Reconciler{users: users}
}

// Reconcile es idempotente: repetirlo con el mismo perfil no escribe nada.
//
// La ejecución compartida no hereda la cancelación de quien la inició; cada
// caller deja de esperar cuando se cancela su propio ctx.
func (r *Reconciler) Reconcile(ctx context.Context, username string, p NormalizedProfile) (*store.User, error) {
	key := username + "\x00" + p.FirstName + "\x00" + p.LastName + "\x00" + p.Email
	flightCtx := context.WithoutCancel(ctx)
	ch := r.sf.DoChan(key, func() (any, error) {
		return r.reconcile(flightCtx, username, p)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// copia: el resultado compartido no se expone mutable
		u := *res.Val.(*store.User)
		return &u, nil
	}
}

func (r *Reconciler) reconcile(ctx context.Context, username string, p NormalizedProfile) (*store.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.reconcile"),
		logger.Username(username),
	)

	u, err := r.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		created, cerr := r.users.Create(ctx, store.User{
			Username:     username,
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Email:        p.Email,
			PasswordHash: password.Unusable(),
		})
		if cerr == nil {
			audit.Log(ctx, audit.Event{
				Name:     audit.EventUserProvisioned,
				Username: username,
				UserID:   created.ID,
				Method:   "idp",
				Email:    created.Email,
			})
			return created, nil
		}
		if !errors.Is(cerr, store.ErrConflict) {
			return nil, fmt.Errorf("create user: %w", cerr)
		}
		log.Debug("user created concurrently, retrying as update")
		if u, err = r.users.GetByUsername(ctx, username); err != nil {
			return nil, fmt.Errorf("get user after conflict: %w", err)
		}
	default:
		return nil, fmt.Errorf("get user: %w", err)
	}

	upd := diffProfile(u, p)
	if upd.Empty() {
		return u, nil
	}
	if err := r.users.UpdateProfile(ctx, username, upd); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	upd.Apply(u)
	log.Debug("local user profile updated", logger.UserID(u.ID))
	return u, nil
}

// diffProfile arma el update con los campos entrantes no vacíos que difieren
// de lo guardado. Un valor vacío nunca pisa uno existente.
func diffProfile(u *store.User, p NormalizedProfile) store.ProfileUpdate {
	var upd store.ProfileUpdate
	if p.FirstName != "" && p.FirstName != u.FirstName {
		v := p.FirstName
		upd.FirstName = &v
	}
	if p.LastName != "" && p.LastName != u.LastName {
		v := p.LastName
		upd.LastName = &v
	}
	if p.Email != "" && p.Email != u.Email {
		v := p.Email
		upd.Email = &v
	}
	return upd
}
