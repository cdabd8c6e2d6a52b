package api

import (
	"errors"
	"fmt"
)

// RemoteFailure - единый контракт ошибки удалённого вызова:
// транспорт, не-2xx статус или невалидный ответ.
type RemoteFailure struct {
	Op     string
	Status int    // 0, если ответа не было
	Body   string // только для логов, пользователю не показываем
	Err    error
}

func (e *RemoteFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteFailure) Unwrap() error { return e.Err }

// AsRemoteFailure достаёт *RemoteFailure из цепочки ошибок.
func AsRemoteFailure(err error) (*RemoteFailure, bool) {
	var rf *RemoteFailure
	if errors.As(err, &rf) {
		return rf, true
	}
	return nil, false
}
