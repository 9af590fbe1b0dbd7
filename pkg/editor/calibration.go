package editor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/blockfit/pkg/errors"
	"github.com/matzehuels/blockfit/pkg/geometry"
	"github.com/matzehuels/blockfit/pkg/observability"
)

// StartCalibration enters calibration mode. It needs a background image.
func (e *Editor) StartCalibration() error {
	if e.gesturing() {
		return errors.New(errors.ErrCodeGestureActive, "finish the current gesture first")
	}
	if e.background == nil {
		e.setStatus(StatusNoBackground)
		return errors.New(errors.ErrCodeNoBackground, StatusNoBackground)
	}
	e.mode = ModeCalibrating
	e.calibration = nil
	e.setStatus(StatusCalibrate)
	return nil
}

func (e *Editor) placeCalibrationPoint(p geometry.Point, btn Button) {
	if btn != ButtonPrimary || len(e.calibration) >= 2 {
		return
	}
	e.calibration = append(e.calibration, p)
	if len(e.calibration) < 2 {
		return
	}
	e.setStatus(StatusCalibrateAsk)
	if e.prompter == nil {
		return
	}
	dist, _ := e.PendingCalibration()
	input, ok := e.prompter.PromptLength(dist)
	if !ok {
		input = ""
	}
	_ = e.CompleteCalibration(input)
}

// PendingCalibration returns the pixel distance between the two calibration
// points once both are placed and the length has not been given yet.
func (e *Editor) PendingCalibration() (float64, bool) {
	if e.mode != ModeCalibrating || len(e.calibration) != 2 {
		return 0, false
	}
	return geometry.Distance(e.calibration[0], e.calibration[1]), true
}

// CompleteCalibration finishes a pending calibration with the real-world
// length of the line, in meters, as typed by the user. A positive number
// sets the scale; anything else (including an empty answer for a
// cancelled prompt) leaves it unchanged. Calibration mode ends either way.
func (e *Editor) CompleteCalibration(input string) error {
	dist, ok := e.PendingCalibration()
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "no calibration line to measure")
	}

	meters, err := ParseLength(input)
	if err != nil || !(dist > 0) {
		e.endCalibration(StatusCalibrationOff, false)
		if err == nil {
			err = errors.New(errors.ErrCodeInvalidLength, "calibration points are identical")
		}
		if strings.TrimSpace(input) == "" {
			return nil
		}
		return err
	}

	e.scene.PxPerMeter = dist / meters
	e.endCalibration(fmt.Sprintf(StatusCalibrated, e.scene.PxPerMeter), true)
	return nil
}

// CancelCalibration leaves calibration mode without changing the scale.
func (e *Editor) CancelCalibration() {
	if e.mode != ModeCalibrating {
		return
	}
	e.endCalibration(StatusCalibrationOff, false)
}

func (e *Editor) endCalibration(status string, ok bool) {
	e.mode = ModeIdle
	e.calibration = nil
	e.setStatus(status)
	observability.Editor().OnCalibrated(e.scene.PxPerMeter, ok)
}

// ParseLength parses a positive, finite length in meters.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidLength, err, "%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidLength, "length must be a positive number of meters, got %q", s)
	}
	return v, nil
}
