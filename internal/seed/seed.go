package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Houmeecl/pilotonotary-backend/internal/access"
	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/internal/usecase"
	"github.com/Houmeecl/pilotonotary-backend/pkg/id"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the layout of a seed YAML document.
//
//	users:
//	  - email: admin@notaria.cl
//	    password: changeme123
//	    role: superadmin
//	pos_locations:
//	  - owner: vecino@notaria.cl
//	    name: Almacén Don Pepe
//	    address: Av. Matta 123
//	    commission_rate: "40.00"
type File struct {
	Users        []User        `yaml:"users"`
	POSLocations []POSLocation `yaml:"pos_locations"`
}

type User struct {
	Email     string      `yaml:"email"`
	Password  string      `yaml:"password"`
	Role      domain.Role `yaml:"role"`
	FirstName string      `yaml:"first_name"`
	LastName  string      `yaml:"last_name"`
	RUT       string      `yaml:"rut"`
	Phone     string      `yaml:"phone"`
	Address   string      `yaml:"address"`
}

type POSLocation struct {
	Owner          string `yaml:"owner"`
	Name           string `yaml:"name"`
	Address        string `yaml:"address"`
	CommissionRate string `yaml:"commission_rate"`
}

type Result struct {
	UsersCreated int
	UsersSkipped int
	POSCreated   int
}

func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// Apply creates the users that do not exist yet, then the POS locations of
// users created in this run. Re-running a seed file is safe.
func Apply(ctx context.Context, store repository.Store, f *File, logger *zap.Logger) (*Result, error) {
	sf, err := id.NewSnowflake(1)
	if err != nil {
		return nil, err
	}
	users := usecase.NewUserUsecase(store, sf, logger)
	pos := usecase.NewPOSUsecase(store, logger)

	// Accounts are created through the admin path so they get the same validation.
	system := access.Principal{UserID: "seed", Role: domain.RoleSuperadmin}

	res := &Result{}
	created := make(map[string]*domain.User)
	for _, u := range f.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		_, err := store.Users().GetByEmail(ctx, email)
		switch {
		case err == nil:
			res.UsersSkipped++
			continue
		case !errors.Is(err, xerrors.ErrNotFound):
			return res, fmt.Errorf("lookup %s: %w", email, err)
		}

		nu, err := users.Create(ctx, system, usecase.CreateUserRequest{
			Email:     email,
			Password:  u.Password,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
			RUT:       u.RUT,
			Phone:     u.Phone,
			Address:   u.Address,
		})
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", email, err)
		}
		created[email] = nu
		res.UsersCreated++
	}

	for _, p := range f.POSLocations {
		owner, ok := created[strings.ToLower(strings.TrimSpace(p.Owner))]
		if !ok {
			logger.Debug("skipping pos location of pre-existing owner", zap.String("owner", p.Owner), zap.String("name", p.Name))
			continue
		}
		req := usecase.CreatePOSLocationRequest{Name: p.Name, Address: p.Address}
		if p.CommissionRate != "" {
			rate, err := decimal.NewFromString(p.CommissionRate)
			if err != nil {
				return res, fmt.Errorf("pos %q commission_rate: %w", p.Name, err)
			}
			req.CommissionRate = &rate
		}
		if _, err := pos.Create(ctx, access.Principal{UserID: owner.ID, Role: owner.Role}, req); err != nil {
			return res, fmt.Errorf("seed pos %q: %w", p.Name, err)
		}
		res.POSCreated++
	}

	logger.Info("seed applied",
		zap.Int("users_created", res.UsersCreated),
		zap.Int("users_skipped", res.UsersSkipped),
		zap.Int("pos_created", res.POSCreated))
	return res, nil
}
