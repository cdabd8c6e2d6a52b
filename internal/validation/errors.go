package validation

// Errors - сообщения по полям. Поле без ошибки в карте отсутствует.
type Errors map[Field]string

func (e Errors) Valid() bool { return e.Len() == 0 }

// Len считает только непустые сообщения.
func (e Errors) Len() int {
	n := 0
	for _, msg := range e {
		if msg != "" {
			n++
		}
	}
	return n
}

func (e Errors) Get(f Field) string { return e[f] }

func (e Errors) Has(f Field) bool { return e[f] != "" }

func (e Errors) Clear(f Field) { delete(e, f) }

func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for f, msg := range e {
		if msg != "" {
			out[f] = msg
		}
	}
	return out
}

// Populated возвращает поля с ошибками в порядке Fields.
func (e Errors) Populated() []Field {
	out := make([]Field, 0, len(e))
	for _, f := range Fields {
		if e.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
