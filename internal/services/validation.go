package services

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/Dias221467/Questline/internal/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so errors match what the client sent
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("criteria", func(fl validator.FieldLevel) bool {
		_, ok := models.AllowedCriteria[fl.Field().String()]
		return ok
	}); err != nil {
		panic(err)
	}
	return v
}

// CreateJourneyInput is the payload for a new journey.
type CreateJourneyInput struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Habit       string       `json:"habit" validate:"required"`
	Duration    int          `json:"duration" validate:"required"`
	Theme       models.Theme `json:"theme" validate:"required"`
	Draft       bool         `json:"draft"`
}

// CheckInInput is one day's submission.
type CheckInInput struct {
	JourneyID    primitive.ObjectID `json:"journey_id"`
	Day          int                `json:"day" validate:"min=0"`
	Reflection   string             `json:"reflection"`
	TextInput    string             `json:"text_input"`
	NumericInput *float64           `json:"numeric_input"`
	PhotoURL     *string            `json:"photo_url"`
	TruthRating  *int               `json:"truth_rating" validate:"omitempty,min=0,max=10"`
}

// AchievementInput is the admin payload for a catalog entry.
type AchievementInput struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
	PointsReward  int     `json:"points_reward" validate:"min=0"`
	CriteriaType  string  `json:"criteria_type" validate:"required,criteria"`
	CriteriaValue int     `json:"criteria_value" validate:"min=1"`
}

// SignUpInput registers an account.
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
}

// validateStruct runs the tag rules and folds failures into one
// ValidationError listing every failing field.
func validateStruct(s interface{}, reason string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return invalid(reason, fields...)
}

// textLength counts runes after trimming surrounding whitespace.
func textLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
