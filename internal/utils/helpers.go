package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/senyabanana/repair-quotes/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// SendError отправляет ошибку сервиса; посторонние ошибки скрываются за fallback.
func SendError(w http.ResponseWriter, err error, fallback string) {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) && errorResponse.StatusCode != 0 {
		SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Error())
		return
	}
	SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// SendJSON отправляет ответ в формате JSON
func SendJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// DecodeAndValidate разбирает тело запроса и проверяет теги validate.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.NewErrorResponse(models.KindValidation, "invalid request body")
	}
	return ValidateStruct(dst)
}

// ValidateStruct проверяет структуру и собирает ошибки полей в одно сообщение.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return models.NewErrorResponse(models.KindValidation, err.Error())
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s: must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		messages = append(messages, fmt.Sprintf("%s: must satisfy %s", fe.Namespace(), fe.Tag()))
	}
	return models.NewErrorResponse(models.KindValidation, strings.Join(messages, "; "))
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 5
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

// Contains - функция для проверки допустимого перехода статуса
func Contains[T comparable](validTransitions []T, newStatus T) bool {
	for _, validStatus := range validTransitions {
		if validStatus == newStatus {
			return true
		}
	}
	return false
}
