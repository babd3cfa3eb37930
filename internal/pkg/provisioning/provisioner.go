// Package provisioning creates the local user and its billing customer the
// first time an identity logs in.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/ManuelReschke/saasbase/app/models"
	"github.com/ManuelReschke/saasbase/app/repository"
)

// Identity is the authenticated profile returned by the identity provider.
type Identity struct {
	ID       string
	Email    string
	Name     string
	Provider string
}

// CustomerCreator creates the payer record at the billing provider.
type CustomerCreator interface {
	CreateCustomer(ctx context.Context, externalID, email, name string) (string, error)
}

// Result describes the user a login resolved to.
type Result struct {
	User    *models.User
	Created bool
}

// DefaultFlightTimeout bounds one shared provisioning attempt. It is applied
// independently of any single caller's deadline.
const DefaultFlightTimeout = 30 * time.Second

// Provisioner ensures exactly one user row per email.
type Provisioner struct {
	users     repository.UserRepository
	customers CustomerCreator
	newID     func() string
	timeout   time.Duration
	flights   singleflight.Group
}

// NewProvisioner wires the user store and billing client.
func NewProvisioner(users repository.UserRepository, customers CustomerCreator) *Provisioner {
	return &Provisioner{
		users:     users,
		customers: customers,
		newID:     uuid.NewString,
		timeout:   DefaultFlightTimeout,
	}
}

// EnsureUser returns the user for the identity's email, creating the billing
// customer and the local row when none exists yet. Concurrent calls for the
// same email inside this process share one attempt; across processes the
// unique email index decides the winner. A caller whose ctx ends stops
// waiting, but the shared attempt keeps running for the others.
func (p *Provisioner) EnsureUser(ctx context.Context, id Identity) (*Result, error) {
	email := strings.TrimSpace(id.Email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	id.Email = email

	ch := p.flights.DoChan(email, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		return p.ensure(shared, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result), nil
	}
}

func (p *Provisioner) ensure(ctx context.Context, id Identity) (*Result, error) {
	existing, err := p.users.GetByEmail(ctx, id.Email)
	if err == nil {
		return &Result{User: existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrUserLookupFailed, err)
	}

	name := displayName(id)
	if err := models.ValidateProfile(name, id.Email); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	customerID, err := p.customers.CreateCustomer(ctx, id.ID, id.Email, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCustomerCreationFailed, err)
	}

	user, err := models.NewUser(p.newID(), name, id.Email, customerID)
	if err != nil {
		log.Printf("[Provisioning] Invalid user for %s, billing customer %s left unlinked: %v", id.Email, customerID, err)
		return nil, fmt.Errorf("%w: %w", ErrUserInsertFailed, err)
	}

	created, err := p.users.CreateIfAbsent(ctx, user)
	if err != nil {
		log.Printf("[Provisioning] Insert failed for %s, billing customer %s left unlinked: %v", id.Email, customerID, err)
		return nil, fmt.Errorf("%w: %w", ErrUserInsertFailed, err)
	}
	if created {
		return &Result{User: user, Created: true}, nil
	}

	// Another process inserted the same email between lookup and insert.
	winner, err := p.users.GetByEmail(ctx, id.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDuplicateUser, err)
	}
	if winner.BillingCustomerID != customerID {
		log.Printf("[Provisioning] Lost insert race for %s, billing customer %s left unlinked (kept %s)", id.Email, customerID, winner.BillingCustomerID)
	}
	return &Result{User: winner}, nil
}

const maxNameRunes = 150

func displayName(id Identity) string {
	if name := strings.TrimSpace(id.Name); name != "" {
		if r := []rune(name); len(r) > maxNameRunes {
			return string(r[:maxNameRunes])
		}
		return name
	}
	local, _, _ := strings.Cut(id.Email, "@")
	if local != "" {
		return local
	}
	return "User"
}
