package library

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"scholarvault/internal/config"
	"scholarvault/internal/domain"
	models "scholarvault/internal/domain/models/library"
	"scholarvault/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	noSlash    = regexp.MustCompile(`^[^/]+$`)
	doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
)

// validateCollectionName checks a name for create and rename
func validateCollectionName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("collection name is required"),
		validation.By(notBlank),
		validation.RuneLength(1, config.MaxCollectionNameLength),
		validation.Match(noSlash).Error("collection name cannot contain slashes"),
	)
}

func (s *libraryService) validateCreateCollection(req *services.CreateCollectionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.By(notBlank),
			validation.RuneLength(1, config.MaxCollectionNameLength),
			validation.Match(noSlash).Error("collection name cannot contain slashes"),
		),
		validation.Field(&req.ParentID, validation.By(s.knownCollection)),
	)
}

// validateDocumentInput checks the fields set in input. requireTitle is set
// for manual creation, where a title is mandatory.
func validateDocumentInput(input *models.DocumentInput, requireTitle bool, now time.Time) error {
	titleRules := []validation.Rule{
		validation.NilOrNotEmpty.Error("title cannot be empty"),
		validation.RuneLength(1, config.MaxDocumentTitleLength),
	}
	if requireTitle {
		titleRules = append(titleRules, validation.Required.Error("title is required"))
	}

	return validation.ValidateStruct(input,
		validation.Field(&input.Title, titleRules...),
		validation.Field(&input.Year,
			validation.Min(1000),
			validation.Max(now.Year()+1),
		),
		validation.Field(&input.DOI,
			validation.Match(doiPattern).Error("must be a DOI such as 10.1000/xyz123"),
		),
		validation.Field(&input.URL, validation.By(httpURL)),
		validation.Field(&input.Authors, validation.Each(validation.Required)),
		validation.Field(&input.Keywords, validation.Each(validation.Required)),
	)
}

func validateSearchQuery(query string) error {
	return validation.Validate(query,
		validation.Required.Error("search query is required"),
		validation.By(notBlank),
		validation.RuneLength(1, config.MaxSearchQueryLength),
	)
}

// knownCollection rejects parent ids absent from the local store
func (s *libraryService) knownCollection(value any) error {
	id, _ := value.(*string)
	if id == nil {
		return nil
	}
	if !s.lib.Collections.Has(*id) {
		return errors.New("parent collection does not exist")
	}
	return nil
}

func notBlank(value any) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case *string:
		if v == nil {
			return nil
		}
		str = *v
	}
	if str != "" && strings.TrimSpace(str) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func httpURL(value any) error {
	v, _ := value.(*string)
	if v == nil || *v == "" {
		return nil
	}
	u, err := url.Parse(*v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

// validationError converts ozzo errors into the domain's ValidationError,
// passing internal rule failures through.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return &domain.ValidationError{Message: err.Error()}
}
