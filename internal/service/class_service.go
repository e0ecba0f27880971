package service

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
)

type classCatalog interface {
	Snapshot() *models.Catalog
	Location() *time.Location
	AddClass(class models.DanceClass)
	UpdateClass(id string, fn func(*models.DanceClass) error) (models.DanceClass, error)
	RemoveClass(id string) error
}

type transitionMetrics interface {
	RecordTransition(from, to string)
}

// statusTransitions lists the changes an owner may request.
var statusTransitions = map[models.ClassStatus][]models.ClassStatus{
	models.ClassStatusActive:    {models.ClassStatusSubmitted, models.ClassStatusCancelled},
	models.ClassStatusSubmitted: {models.ClassStatusActive, models.ClassStatusCancelled},
	models.ClassStatusFeatured:  {models.ClassStatusCancelled},
}

// CanTransition reports whether an owner may move a class from one status to another.
func CanTransition(from, to models.ClassStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

var classFieldMessages = map[string]map[string]string{
	"title":       {"": "Class title is required", "max": "Class title is too long"},
	"style":       {"": "Please select at least one dance style", "dance_style": "Unknown dance style"},
	"date_time":   {"": "Class must be scheduled for a future date and time"},
	"location":    {"": "Location is required", "max": "Location is too long"},
	"description": {"": "Description is required", "max": "Description is too long"},
	"price":       {"": "Price must be zero or more"},
	"rsvp_link":   {"": "RSVP link must be a valid URL"},
	"flyer":       {"": "Flyer must be a valid URL"},
	"video_link":  {"": "Video link must be a valid URL"},
}

// ClassService validates and applies choreographer-owned class changes to the
// in-memory catalog.
type ClassService struct {
	catalog   classCatalog
	validator *validator.Validate
	metrics   transitionMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewClassService constructs the class service.
func NewClassService(catalog classCatalog, validate *validator.Validate, metrics transitionMetrics, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ClassService{catalog: catalog, validator: validate, metrics: metrics, logger: logger, now: time.Now}
	svc.validator.RegisterValidation("dance_style", func(fl validator.FieldLevel) bool {
		return models.IsDanceStyle(fl.Field().String())
	})
	return svc
}

// Create validates req and adds a new active class owned by the session user.
func (s *ClassService) Create(session *models.Session, req dto.ClassRequest) (*models.DanceClass, error) {
	if !session.User.Role.CanTeach() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only choreographers can create classes")
	}
	fields, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	class := models.DanceClass{
		ID:                    uuid.NewString(),
		ChoreographerID:       session.User.ID,
		ChoreographerName:     session.User.Name,
		ChoreographerUsername: session.User.Username,
		Status:                models.ClassStatusActive,
	}
	fields.apply(&class)
	s.catalog.AddClass(class)

	s.logger.Info("class created",
		zap.String("class_id", class.ID),
		zap.String("choreographer_id", class.ChoreographerID))
	return &class, nil
}

// Update replaces the editable fields of an owned class.
func (s *ClassService) Update(session *models.Session, id string, req dto.ClassRequest) (*models.DanceClass, error) {
	if err := s.authorize(session, id); err != nil {
		return nil, err
	}
	fields, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	updated, err := s.catalog.UpdateClass(id, func(class *models.DanceClass) error {
		if class.ChoreographerID != session.User.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the owning choreographer can edit this class")
		}
		fields.apply(class)
		return nil
	})
	if err != nil {
		return nil, s.mapCatalogError(err)
	}
	s.logger.Info("class updated", zap.String("class_id", id))
	return &updated, nil
}

// Transition moves an owned class to a new status following the transition table.
func (s *ClassService) Transition(session *models.Session, id string, to models.ClassStatus) (*models.DanceClass, error) {
	if !to.Valid() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid status", map[string]string{"status": "Unknown class status"})
	}
	if err := s.authorize(session, id); err != nil {
		return nil, err
	}
	if to == models.ClassStatusFeatured {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "featured placement is granted by an administrator")
	}
	return s.apply(id, to, func(class *models.DanceClass) error {
		if class.ChoreographerID != session.User.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the owning choreographer can change this class")
		}
		if !CanTransition(class.Status, to) {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move class from "+string(class.Status)+" to "+string(to))
		}
		return nil
	})
}

// Promote grants featured placement to a submitted class.
func (s *ClassService) Promote(id string) (*models.DanceClass, error) {
	return s.apply(id, models.ClassStatusFeatured, func(class *models.DanceClass) error {
		if class.Status != models.ClassStatusSubmitted {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "only submitted classes can be featured")
		}
		return nil
	})
}

// Delete removes an owned class from the catalog.
func (s *ClassService) Delete(session *models.Session, id string) error {
	if err := s.authorize(session, id); err != nil {
		return err
	}
	if err := s.catalog.RemoveClass(id); err != nil {
		return s.mapCatalogError(err)
	}
	s.logger.Info("class deleted", zap.String("class_id", id), zap.String("choreographer_id", session.User.ID))
	return nil
}

func (s *ClassService) apply(id string, to models.ClassStatus, check func(*models.DanceClass) error) (*models.DanceClass, error) {
	var from models.ClassStatus
	updated, err := s.catalog.UpdateClass(id, func(class *models.DanceClass) error {
		if err := check(class); err != nil {
			return err
		}
		from = class.Status
		class.Status = to
		return nil
	})
	if err != nil {
		return nil, s.mapCatalogError(err)
	}
	if s.metrics != nil {
		s.metrics.RecordTransition(string(from), string(to))
	}
	s.logger.Info("class status changed",
		zap.String("class_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return &updated, nil
}

func (s *ClassService) authorize(session *models.Session, id string) error {
	class, ok := s.catalog.Snapshot().ClassByID(id)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if !session.User.Role.CanTeach() || class.ChoreographerID != session.User.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owning choreographer can manage this class")
	}
	return nil
}

func (s *ClassService) mapCatalogError(err error) error {
	if errors.Is(err, ErrClassNotInCatalog) {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return err
}

type classFields struct {
	title       string
	style       []string
	at          time.Time
	location    string
	description string
	price       *float64
	rsvpLink    *string
	flyer       *string
	videoLink   *string
}

func (f classFields) apply(class *models.DanceClass) {
	class.Title = f.title
	class.Style = append([]string(nil), f.style...)
	class.DateTime = f.at
	class.Location = f.location
	class.Description = f.description
	class.Price = f.price
	class.RSVPLink = f.rsvpLink
	class.Flyer = f.flyer
	class.VideoLink = f.videoLink
}

// validate normalises req and reports every failing field at once.
func (s *ClassService) validate(req dto.ClassRequest) (classFields, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	req.Description = strings.TrimSpace(req.Description)
	req.DateTime = strings.TrimSpace(req.DateTime)
	req.RSVPLink = trimOptional(req.RSVPLink)
	req.Flyer = trimOptional(req.Flyer)
	req.VideoLink = trimOptional(req.VideoLink)
	styles := make([]string, 0, len(req.Style))
	for _, style := range req.Style {
		if style = strings.TrimSpace(style); style != "" {
			styles = append(styles, canonicalStyle(style))
		}
	}
	req.Style = styles

	details := make(map[string]string)
	if err := s.validator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return classFields{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
		}
		for _, fe := range fieldErrs {
			field := classFieldName(fe.StructField())
			if _, seen := details[field]; seen {
				continue
			}
			details[field] = classFieldMessage(field, fe.Tag())
		}
	}

	var at time.Time
	if _, failed := details["date_time"]; !failed {
		parsed, err := repository.ParseClassTime(req.DateTime, s.catalog.Location())
		if err != nil || !parsed.After(s.now()) {
			details["date_time"] = classFieldMessages["date_time"][""]
		}
		at = parsed
	}

	if len(details) > 0 {
		return classFields{}, appErrors.WithDetails(appErrors.ErrValidation, "invalid class payload", details)
	}
	return classFields{
		title:       req.Title,
		style:       req.Style,
		at:          at,
		location:    req.Location,
		description: req.Description,
		price:       req.Price,
		rsvpLink:    req.RSVPLink,
		flyer:       req.Flyer,
		videoLink:   req.VideoLink,
	}, nil
}

func classFieldName(structField string) string {
	if i := strings.IndexByte(structField, '['); i >= 0 {
		structField = structField[:i]
	}
	switch structField {
	case "DateTime":
		return "date_time"
	case "RSVPLink":
		return "rsvp_link"
	case "VideoLink":
		return "video_link"
	default:
		return strings.ToLower(structField)
	}
}

func classFieldMessage(field, tag string) string {
	messages := classFieldMessages[field]
	if msg, ok := messages[tag]; ok {
		return msg
	}
	if msg, ok := messages[""]; ok {
		return msg
	}
	return "Invalid value"
}

func canonicalStyle(style string) string {
	for _, known := range models.DanceStyles {
		if strings.EqualFold(known, style) {
			return known
		}
	}
	return style
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
