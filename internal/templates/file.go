package templates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gitshopapp/orderreceipt/internal/models"
)

// File is the YAML document used to seed templates and the company profile.
type File struct {
	Company   *models.CompanyDetails   `yaml:"company"`
	Templates []models.ReceiptTemplate `yaml:"templates"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &file, nil
}

func (p *Parser) ParseFromString(content string) (*File, error) {
	return p.Parse([]byte(content))
}

func (p *Parser) ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	return p.Parse(content)
}
