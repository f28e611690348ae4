// Package seed loads owners, properties and tenants from a YAML file into
// the stores, going through the services so passwords are hashed.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

type File struct {
	Owners []Owner `yaml:"owners"`
}

type Owner struct {
	Email      string     `yaml:"email"`
	Username   string     `yaml:"username"`
	Name       string     `yaml:"name"`
	Password   string     `yaml:"password"`
	Properties []Property `yaml:"properties"`
}

type Property struct {
	Name     string   `yaml:"name"`
	Location string   `yaml:"location"`
	Tenants  []Tenant `yaml:"tenants"`
}

type Tenant struct {
	FlatNo     string  `yaml:"flatNo"`
	Name       string  `yaml:"name"`
	Username   string  `yaml:"username"`
	Email      string  `yaml:"email"`
	Password   string  `yaml:"password"`
	RentAmount float64 `yaml:"rentAmount"`
	// Requests are descriptions of maintenance requests raised for the flat.
	Requests []string `yaml:"requests"`
}

// Result counts what Apply created.
type Result struct {
	Owners     int
	Properties int
	Tenants    int
	Requests   int
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// Apply creates everything in f. Owners that already exist are skipped
// along with their properties.
func Apply(ctx context.Context, f *File, users *services.UserService, properties *services.PropertyService) (*Result, error) {
	res := &Result{}
	for _, o := range f.Owners {
		owner, err := users.CreateUser(ctx, &models.User{
			Role:     models.RoleOwner,
			Email:    o.Email,
			Username: o.Username,
			Name:     o.Name,
			Password: o.Password,
		})
		if errors.Is(err, repositories.ErrDuplicateUser) {
			log.Printf("Seed: owner %s already exists, skipping", ownerLabel(o))
			continue
		}
		if err != nil {
			return res, fmt.Errorf("owner %s: %w", ownerLabel(o), err)
		}
		res.Owners++

		for _, p := range o.Properties {
			property, err := properties.Create(ctx, owner.ID, p.Name, p.Location)
			if err != nil {
				return res, fmt.Errorf("property %q: %w", p.Name, err)
			}
			res.Properties++

			for _, t := range p.Tenants {
				if _, err := properties.AddTenant(ctx, property.ID, models.Tenant{
					FlatNo:     t.FlatNo,
					Name:       t.Name,
					Username:   t.Username,
					Email:      t.Email,
					Password:   t.Password,
					RentAmount: t.RentAmount,
				}); err != nil {
					return res, fmt.Errorf("tenant %s of %q: %w", t.FlatNo, p.Name, err)
				}
				res.Tenants++

				for _, desc := range t.Requests {
					if _, err := properties.RaiseRequest(ctx, property.ID, t.FlatNo, desc); err != nil {
						return res, fmt.Errorf("request for %s of %q: %w", t.FlatNo, p.Name, err)
					}
					res.Requests++
				}
			}
		}
	}
	return res, nil
}

func ownerLabel(o Owner) string {
	if o.Email != "" {
		return o.Email
	}
	return o.Username
}
