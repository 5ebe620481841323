package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/restock/pkg/logger"
	"github.com/dmitrymomot/restock/svc/auth"
	"github.com/dmitrymomot/restock/svc/catalog"
)

type seedUser struct {
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

type seedProduct struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Attributes  map[string]string `yaml:"attributes"`
	Price       float64           `yaml:"price"`
	Stock       *int              `yaml:"stock"`
}

type seedData struct {
	Users    []seedUser    `yaml:"users"`
	Products []seedProduct `yaml:"products"`
}

type seedResult struct {
	Users, SkippedUsers, Products int
}

func parseSeed(r io.Reader) (*seedData, error) {
	var data seedData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return &data, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &data, nil
}

type registrar interface {
	Register(ctx context.Context, email, password string, roles ...string) (*auth.User, error)
}

type productCreator interface {
	Create(ctx context.Context, in catalog.CreateProductInput) (string, error)
}

// applySeed creates the users and products in data. Users whose email is
// already taken are skipped so the same file can be applied twice.
func applySeed(ctx context.Context, data *seedData, users registrar, products productCreator) (seedResult, error) {
	var res seedResult
	for _, u := range data.Users {
		if _, err := users.Register(ctx, u.Email, u.Password, u.Roles...); err != nil {
			if errors.Is(err, auth.ErrEmailAlreadyInUse) {
				res.SkippedUsers++
				continue
			}
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		res.Users++
	}
	for _, p := range data.Products {
		_, err := products.Create(ctx, catalog.CreateProductInput{
			Name:        p.Name,
			Description: p.Description,
			Attributes:  p.Attributes,
			Price:       p.Price,
			Stock:       p.Stock,
		})
		if err != nil {
			return res, fmt.Errorf("seed product %s: %w", p.Name, err)
		}
		res.Products++
	}
	return res, nil
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and products from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ctx := cmd.Context()

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			data, err := parseSeed(f)
			if err != nil {
				return err
			}

			be, err := openBackend(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer be.close()

			authority := auth.NewAuthority(be.store, nil, auth.WithLogger(log), auth.WithBcryptCost(cfg.BcryptCost))
			engine := catalog.NewEngine(be.store, be.store, nil, catalog.WithLogger(log))

			res, err := applySeed(ctx, data, authority, engine)
			if err != nil {
				return err
			}
			log.InfoContext(ctx, "seed applied",
				logger.Component("seed"),
				slog.Int("users", res.Users),
				slog.Int("skipped_users", res.SkippedUsers),
				slog.Int("products", res.Products),
			)
			color.Green("seeded %d users (%d skipped) and %d products", res.Users, res.SkippedUsers, res.Products)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "path to the seed file")
	return cmd
}
