package main

import (
	"fmt"
	"os"

	"petmarket/catalog/internal/container"
	"petmarket/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// breedFile is the layout of an import file: breeds grouped by category
type breedFile struct {
	Categories []struct {
		Code        string `yaml:"code"`
		DisplayName string `yaml:"displayName"`
		Breeds      []struct {
			Code        string `yaml:"code"`
			DisplayName string `yaml:"displayName"`
		} `yaml:"breeds"`
	} `yaml:"categories"`
}

func (f breedFile) flatten() []domain.Breed {
	breeds := make([]domain.Breed, 0)
	for _, category := range f.Categories {
		for _, breed := range category.Breeds {
			breeds = append(breeds, domain.Breed{
				Code:                breed.Code,
				DisplayName:         breed.DisplayName,
				CategoryCode:        category.Code,
				CategoryDisplayName: category.DisplayName,
			})
		}
	}
	return breeds
}

func loadBreedFile(path string) ([]domain.Breed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file breedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return file.flatten(), nil
}

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import breeds from a YAML file into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		breeds, err := loadBreedFile(args[0])
		if err != nil {
			return err
		}
		log.Infof("🔄 Importing %d breeds from %s", len(breeds), args[0])

		app, err := container.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Service.ImportBreeds(cmd.Context(), breeds)
	},
}
