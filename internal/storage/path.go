package storage

import (
	"fmt"
	"strings"

	"taskdeck/internal/task"
)

// Tasks live at users/{uid}/tasks/{taskID}. Every query and mutation is
// addressed through one user's collection path; there is no shared task
// collection to filter.

func CollectionPath(uid string) (string, error) {
	if err := validateSegment("user id", uid); err != nil {
		return "", err
	}
	return "users/" + uid + "/tasks", nil
}

func DocumentPath(uid, taskID string) (string, error) {
	col, err := CollectionPath(uid)
	if err != nil {
		return "", err
	}
	if err := validateSegment("task id", taskID); err != nil {
		return "", err
	}
	return col + "/" + taskID, nil
}

func validateSegment(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is empty", task.ErrValidation, name)
	}
	if strings.ContainsAny(v, "/$\x00") {
		return fmt.Errorf("%w: %s %q contains a reserved character", task.ErrValidation, name, v)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, task.ErrStoreUnavailable, err)
}
