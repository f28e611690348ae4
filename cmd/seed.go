package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rentcare/rentcare-gobackend/internal/seed"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Load owners, properties and tenants from a YAML file into MongoDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.MongoURI == "" {
				return fmt.Errorf("MONGOURI environment variable not set")
			}

			f, err := seed.Load(args[0])
			if err != nil {
				return err
			}

			st, err := openStores(cmd.Context(), cfg, storeMongo)
			if err != nil {
				return err
			}
			defer st.close()

			res, err := seed.Apply(cmd.Context(), f,
				services.NewUserService(st.users),
				services.NewPropertyService(st.properties))
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d owners, %d properties, %d tenants, %d maintenance requests\n",
				res.Owners, res.Properties, res.Tenants, res.Requests)
			return nil
		},
	}
	return cmd
}
