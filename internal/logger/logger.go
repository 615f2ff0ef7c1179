package logger

// Fields дополнительные поля записи.
type Fields map[string]any

// Logger структурированный журнал с именем компонента в каждой записи.
type Logger interface {
	Debug(component, message string, fields Fields)
	Info(component, message string, fields Fields)
	Warning(component, message string, fields Fields)
	Error(component string, err error, fields Fields)
}
