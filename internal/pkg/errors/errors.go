package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных
	// (например, запрос без типа упражнения).
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов уникальности (например, повторная
	// регистрация с тем же email).
	ErrConflict = errors.New("resource state conflict")
)
