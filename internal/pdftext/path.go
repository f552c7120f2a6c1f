package pdftext

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/debt-tracker/constants"
	"github.com/joseph-ayodele/debt-tracker/internal/common"
)

// ValidatePath checks that path names a readable, non-empty PDF file.
// Failures are *common.PipelineError of kind InvalidPath.
func ValidatePath(path string) error {
	if path == "" {
		return invalid(common.ReasonEmptyPath, "no file path given", nil)
	}
	if !constants.IsAllowedExt(filepath.Ext(path)) {
		return invalid(common.ReasonWrongType, "file must be a PDF", nil)
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return invalid(common.ReasonNotFound, "file does not exist", err)
	case errors.Is(err, fs.ErrPermission):
		return invalid(common.ReasonPermission, "permission denied", err)
	case err != nil:
		return invalid(common.ReasonNotFound, "cannot stat file", err)
	}
	if info.IsDir() {
		return invalid(common.ReasonIsDirectory, "path is a directory", nil)
	}
	if info.Size() == 0 {
		return invalid(common.ReasonEmptyFile, "file is empty", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return invalid(common.ReasonPermission, "permission denied", err)
		}
		return invalid(common.ReasonNotFound, "cannot open file", err)
	}
	_ = f.Close()
	return nil
}

func invalid(reason, msg string, cause error) error {
	return common.NewPipelineError(common.KindInvalidPath, reason, msg, cause)
}
