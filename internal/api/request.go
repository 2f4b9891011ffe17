package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const maxBodyBytes = 1 << 20

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			_, err := bson.ObjectIDFromHex(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// decodeBody reads a JSON body into dst and validates it. On failure the 400
// response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		ValidationErr("Request body is not valid JSON.", []ErrorDetail{{Field: "body", Message: err.Error()}}).
			Write(w, http.StatusBadRequest)
		return false
	}

	if err := getValidator().Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			ValidationErr("Request validation failed.", validationDetails(fieldErrs)).Write(w, http.StatusBadRequest)
			return false
		}
		ValidationErr(err.Error(), nil).Write(w, http.StatusBadRequest)
		return false
	}
	return true
}

func validationDetails(errs validator.ValidationErrors) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(errs))
	for _, fe := range errs {
		details = append(details, ErrorDetail{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "objectid":
		return "must be a 24 character hex id"
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// pathID parses the {id} URL parameter. On failure the 400 response has
// already been written.
func pathID(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		ValidationErr("Invalid id.", []ErrorDetail{{Field: "id", Message: "must be a 24 character hex id"}}).
			Write(w, http.StatusBadRequest)
		return bson.ObjectID{}, false
	}
	return id, true
}

func parseObjectIDs(raw []string) ([]bson.ObjectID, error) {
	ids := make([]bson.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := bson.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
