package services

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/contenttypes"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ContentTypeService answers registry lookups and validates content item
// properties against their type's schema before they reach the layout model.
type ContentTypeService struct {
	repo     repositories.ContentTypeRepository
	validate *validator.Validate
	logger   *logging.ChanneledLogger
}

// NewContentTypeService creates a new content type service
func NewContentTypeService(repo repositories.ContentTypeRepository, logger *logging.ChanneledLogger) *ContentTypeService {
	return &ContentTypeService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// GetAll returns every registered type.
func (s *ContentTypeService) GetAll() ([]*contenttypes.ContentType, error) {
	types, err := s.repo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get content types: %w", err)
	}
	return types, nil
}

// GetByType returns one registered type.
func (s *ContentTypeService) GetByType(typeName string) (*contenttypes.ContentType, error) {
	ct, err := s.repo.FindByType(typeName)
	if err != nil {
		return nil, fmt.Errorf("failed to get content type %s: %w", typeName, err)
	}
	if ct == nil {
		return nil, layout.NewError(layout.KindNotFound, "contentType", "content type %q is not registered", typeName)
	}
	return ct, nil
}

// SyncRegistry upserts every type in types so the registry matches the
// seed file. Types missing from the file stay registered because stored
// pages may still reference them.
func (s *ContentTypeService) SyncRegistry(types []contenttypes.ContentType) (int, error) {
	synced := 0
	for i := range types {
		ct := types[i]
		if err := s.repo.Store(&ct); err != nil {
			return synced, fmt.Errorf("failed to sync content type %s: %w", ct.Type, err)
		}
		synced++
	}
	s.logger.Content().Debug("Content type registry synced", "types", synced)
	return synced, nil
}

// ValidateItem checks item.Properties against item.Type.
func (s *ContentTypeService) ValidateItem(item layout.ContentItem) error {
	return s.ValidateProperties(item.Type, item.Properties)
}

// ValidateProperties reports every problem with props at once. An unknown
// type is an invalid argument; schema failures are validation errors.
func (s *ContentTypeService) ValidateProperties(typeName string, props map[string]any) error {
	ct, err := s.repo.FindByType(typeName)
	if err != nil {
		return fmt.Errorf("failed to get content type %s: %w", typeName, err)
	}
	if ct == nil {
		return layout.NewError(layout.KindInvalidArgument, "validateProperties", "unknown content type %q", typeName)
	}

	var problems []string
	for _, prop := range ct.Properties {
		value, present := props[prop.Name]
		if !present || value == nil {
			if prop.Required {
				problems = append(problems, fmt.Sprintf("%s is required", prop.Name))
			}
			continue
		}
		if !prop.Kind.Matches(value) {
			problems = append(problems, fmt.Sprintf("%s must be a %s", prop.Name, prop.Kind))
			continue
		}
		if prop.Rules == "" {
			continue
		}
		if err := s.validate.Var(value, prop.Rules); err != nil {
			problems = append(problems, fmt.Sprintf("%s fails %s", prop.Name, describeRules(err, prop.Rules)))
		}
	}

	if !ct.Open {
		var unknown []string
		for name := range props {
			if _, ok := ct.Property(name); !ok {
				unknown = append(unknown, name)
			}
		}
		sort.Strings(unknown)
		for _, name := range unknown {
			problems = append(problems, fmt.Sprintf("%s is not a %s property", name, typeName))
		}
	}

	if len(problems) > 0 {
		return layout.NewError(layout.KindValidation, "validateProperties", "%s: %s", typeName, strings.Join(problems, "; "))
	}
	return nil
}

func describeRules(err error, rules string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fe.Tag() + "=" + fe.Param()
		}
		return fe.Tag()
	}
	return rules
}

type registryFile struct {
	ContentTypes []contenttypes.ContentType `yaml:"contentTypes"`
}

// LoadContentTypes reads the registry seed file at path. A missing file
// yields the built-in defaults.
func LoadContentTypes(path string) ([]contenttypes.ContentType, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return contenttypes.Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content types file %s: %w", path, err)
	}
	return ParseContentTypes(raw)
}

// ParseContentTypes decodes and checks a YAML registry document.
func ParseContentTypes(raw []byte) ([]contenttypes.ContentType, error) {
	var file registryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse content types: %w", err)
	}

	v := validator.New()
	var seen []string
	for i := range file.ContentTypes {
		ct := &file.ContentTypes[i]
		if ct.Type == "" {
			return nil, fmt.Errorf("content type %d has no type", i)
		}
		if slices.Contains(seen, ct.Type) {
			return nil, fmt.Errorf("content type %s is declared twice", ct.Type)
		}
		seen = append(seen, ct.Type)
		if ct.Name == "" {
			ct.Name = ct.Type
		}
		for j := range ct.Properties {
			p := &ct.Properties[j]
			if p.Kind == "" {
				p.Kind = contenttypes.KindAny
			}
			if !p.Kind.Valid() {
				return nil, fmt.Errorf("content type %s property %s has unknown kind %q", ct.Type, p.Name, p.Kind)
			}
			if err := checkRules(v, p.Kind, p.Rules); err != nil {
				return nil, fmt.Errorf("content type %s property %s: %w", ct.Type, p.Name, err)
			}
		}
	}
	return file.ContentTypes, nil
}

// checkRules rejects tags validator does not know. validator panics on
// undefined tags and on params it cannot parse for the value's type, so the
// probe runs against a zero value of kind behind recover.
func checkRules(v *validator.Validate, kind contenttypes.PropertyKind, rules string) (err error) {
	if rules == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid rules %q: %v", rules, r)
		}
	}()
	var probe any = ""
	switch kind {
	case contenttypes.KindNumber:
		probe = float64(0)
	case contenttypes.KindBoolean:
		probe = false
	case contenttypes.KindObject:
		probe = map[string]any{}
	case contenttypes.KindArray:
		probe = []any{}
	}
	_ = v.Var(probe, rules)
	return nil
}
