package tracking

// Phase - фаза ключа в оптимистичном кэше.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
	PhaseSent
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSending:
		return "sending"
	case PhaseSent:
		return "sent"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// KeyState - фаза ключа и последняя известная запись. В фазе Idle запись
// отсутствует, в Sending может остаться запись прошлой отправки.
type KeyState struct {
	Phase Phase
	Entry *Entry
}

func stateOf(entry *Entry, sending bool) KeyState {
	switch {
	case sending:
		return KeyState{Phase: PhaseSending, Entry: entry}
	case entry == nil:
		return KeyState{Phase: PhaseIdle}
	case entry.Status == StatusFailed:
		return KeyState{Phase: PhaseFailed, Entry: entry}
	default:
		return KeyState{Phase: PhaseSent, Entry: entry}
	}
}

// Reconcile сводит локальную запись с серверной. Терминальный статус
// сервера побеждает всегда. В остальных случаях сервер побеждает, если
// локальная запись не обновлялась строго позже него; нулевые отметки
// времени считаются старыми. Локальные поля, которых нет на сервере,
// переносятся в результат.
func Reconcile(local *Entry, server Entry) Entry {
	if local == nil {
		return server.clone()
	}
	if !server.Status.IsTerminal() && newer(local, &server) {
		return local.clone()
	}

	resolved := server.clone()
	resolved.RetryCount = local.RetryCount
	if resolved.WorkshopName == "" {
		resolved.WorkshopName = local.WorkshopName
	}
	if resolved.LinkedRequestID == "" {
		resolved.LinkedRequestID = local.LinkedRequestID
	}
	if resolved.BidID == "" {
		resolved.BidID = local.BidID
	}
	if resolved.CreatedAt.IsZero() {
		resolved.CreatedAt = local.CreatedAt
	}
	if len(local.Metadata) > 0 {
		merged := make(map[string]string, len(local.Metadata)+len(resolved.Metadata))
		for k, v := range local.Metadata {
			merged[k] = v
		}
		for k, v := range resolved.Metadata {
			merged[k] = v
		}
		resolved.Metadata = merged
	}
	return resolved
}

func newer(a, b *Entry) bool {
	return !a.UpdatedAt.IsZero() && !b.UpdatedAt.IsZero() && a.UpdatedAt.After(b.UpdatedAt)
}
