package entity

import (
	"errors"
	"fmt"
)

// InvalidInputError сообщает о структурно некорректном растре (нулевой размер, рваные строки).
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// NewInvalidInput создаёт ошибку входных данных с форматированным описанием.
func NewInvalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidInput сообщает, есть ли в цепочке ошибка входных данных.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// ConfigurationError сообщает о параметре анализа вне допустимого диапазона.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError создаёт ошибку конфигурации для поля.
func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError сообщает, есть ли в цепочке ошибка конфигурации.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
