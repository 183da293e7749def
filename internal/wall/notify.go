package wall

import (
	"errors"
	"fmt"
)

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelDanger
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelDanger:
		return "danger"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Notification is a short message for the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// ErrValidation is wrapped by errors returned for rejected user input.
var ErrValidation = errors.New("validation failed")

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

const (
	msgWallNameRequired    = "Please set a wall name"
	msgProblemNameRequired = "Please set a problem name"
	msgCannotSaveDemo      = "Cannot save demo wall"
	msgCannotDeleteDemo    = "Cannot delete demo wall"
	msgSyncFailed          = "Something went wrong while getting grid from server"
	msgLoadProblemFailed   = "Something went wrong while loading problem"
	msgClearFailed         = "Something went wrong while clearing wall"
	msgToggleFailed        = "Something went wrong while toggling %d"
	msgSaveWallFailed      = "Something went wrong while saving wall"
	msgSaveProblemFailed   = "Something went wrong while saving problem"
	msgDeleteWallFailed    = "Something went wrong while deleting wall"
	msgDeleteProblemFailed = "Something went wrong while deleting problem"
	msgLoadWallsFailed     = "Something went wrong while loading walls"
	msgLoadProblemsFailed  = "Something went wrong while loading problems"
)
