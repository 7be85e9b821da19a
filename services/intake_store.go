package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/manmeddynamics7-hub/healtify/models"

	"gorm.io/gorm"
)

// IntakeStorage is what the façade and the scheduler need from
// persistence. The production implementation is GORM-backed; tests wrap it
// to inject failures.
type IntakeStorage interface {
	PutArchive(rec models.IntakeArchive) error
	GetArchive(userID uint, dateKey string) (*models.IntakeArchive, error)
	ListArchiveDates(userID uint) ([]string, error)

	SaveLive(intake *models.DailyIntake) error
	LoadLive(userID uint) (*models.DailyIntake, error)
	DeleteLive(userID uint, dateKey string) error
	ListLiveOwners() ([]uint, error)
}

type IntakeStore struct{ db *gorm.DB }

func NewIntakeStore(db *gorm.DB) *IntakeStore { return &IntakeStore{db: db} }

// PutArchive writes the snapshot for (user, date). A second put with
// identical data is accepted and leaves the stored row untouched; a
// differing one is rejected so a finished day can never be rewritten.
func (s *IntakeStore) PutArchive(rec models.IntakeArchive) error {
	var existing models.IntakeArchive
	err := s.db.Where("user_id = ? AND date_key = ?", rec.UserID, rec.DateKey).First(&existing).Error
	if err == nil {
		if sameArchive(existing, rec) {
			return nil
		}
		return fmt.Errorf("%w: archive for %s already holds different data", ErrConflict, rec.DateKey)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return &StorageError{Op: "lookup archive", Err: err}
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return &StorageError{Op: "write archive", Err: err}
	}
	return nil
}

func (s *IntakeStore) GetArchive(userID uint, dateKey string) (*models.IntakeArchive, error) {
	var rec models.IntakeArchive
	err := s.db.Where("user_id = ? AND date_key = ?", userID, dateKey).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no archive for %s", ErrNotFound, dateKey)
	}
	if err != nil {
		return nil, &StorageError{Op: "read archive", Err: err}
	}
	return &rec, nil
}

func (s *IntakeStore) ListArchiveDates(userID uint) ([]string, error) {
	var dates []string
	err := s.db.Model(&models.IntakeArchive{}).
		Where("user_id = ?", userID).
		Order("date_key desc").
		Pluck("date_key", &dates).Error
	if err != nil {
		return nil, &StorageError{Op: "list archive dates", Err: err}
	}
	return dates, nil
}

// SaveLive upserts the live document for (user, date).
func (s *IntakeStore) SaveLive(intake *models.DailyIntake) error {
	var existing models.DailyIntake
	err := s.db.Where("user_id = ? AND date_key = ?", intake.UserID, intake.DateKey).First(&existing).Error
	if err == nil {
		existing.Entries = intake.Entries
		existing.Totals = intake.Totals
		if err := s.db.Save(&existing).Error; err != nil {
			return &StorageError{Op: "update live intake", Err: err}
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return &StorageError{Op: "lookup live intake", Err: err}
	}
	if err := s.db.Create(intake).Error; err != nil {
		return &StorageError{Op: "create live intake", Err: err}
	}
	return nil
}

// LoadLive returns the newest live document for the user, from any day, so
// a restart can pick up an unarchived aggregate. Nil without error when
// the user has none.
func (s *IntakeStore) LoadLive(userID uint) (*models.DailyIntake, error) {
	var intake models.DailyIntake
	err := s.db.Where("user_id = ?", userID).Order("date_key desc").First(&intake).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "load live intake", Err: err}
	}
	return &intake, nil
}

func (s *IntakeStore) DeleteLive(userID uint, dateKey string) error {
	err := s.db.Where("user_id = ? AND date_key = ?", userID, dateKey).Delete(&models.DailyIntake{}).Error
	if err != nil {
		return &StorageError{Op: "delete live intake", Err: err}
	}
	return nil
}

// ListLiveOwners returns users that currently hold a non-empty live
// document. Drives the scheduler's boundary sweep.
func (s *IntakeStore) ListLiveOwners() ([]uint, error) {
	var rows []models.DailyIntake
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, &StorageError{Op: "list live owners", Err: err}
	}
	var owners []uint
	for _, r := range rows {
		if len(r.Entries) > 0 {
			owners = append(owners, r.UserID)
		}
	}
	return owners, nil
}

func sameArchive(a, b models.IntakeArchive) bool {
	if a.UserID != b.UserID || a.DateKey != b.DateKey || a.Totals != b.Totals {
		return false
	}
	ae, err1 := json.Marshal(a.Entries)
	be, err2 := json.Marshal(b.Entries)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(ae) == string(be)
}
