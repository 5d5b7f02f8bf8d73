// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Для nil пишется пустая строка: фоновые компоненты логируют
// результат, не проверяя его заранее.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Route возвращает атрибут маршрута клиента.
func Route(route string) slog.Attr {
	return slog.String("route", route)
}
