package memory

import (
	"context"
	"sync"

	"scoreboard-service/internal/domain"
)

// Directory is an in-memory stand-in for the external user-profile
// collaborator (useful for tests/demos).
type Directory struct {
	mu             sync.RWMutex
	students       map[string]domain.StudentProfile
	teacherClasses map[string]string
}

func NewDirectory() *Directory {
	return &Directory{
		students:       make(map[string]domain.StudentProfile),
		teacherClasses: make(map[string]string),
	}
}

// PutStudent registers or replaces a student profile.
func (d *Directory) PutStudent(profile domain.StudentProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.students[profile.ID] = profile
}

// PutTeacher assigns a teacher to a class.
func (d *Directory) PutTeacher(teacherID, classID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.teacherClasses[teacherID] = classID
}

func (d *Directory) StudentProfile(_ context.Context, studentID string) (domain.StudentProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if profile, ok := d.students[studentID]; ok {
		return profile, nil
	}
	return domain.StudentProfile{}, domain.ErrStudentNotFound
}

func (d *Directory) TeacherClass(_ context.Context, teacherID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if classID, ok := d.teacherClasses[teacherID]; ok && classID != "" {
		return classID, nil
	}
	return "", domain.ErrTeacherNotFound
}

func (d *Directory) DisplayNames(_ context.Context, studentIDs []string) (map[string]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make(map[string]string, len(studentIDs))
	for _, id := range studentIDs {
		if profile, ok := d.students[id]; ok {
			names[id] = profile.DisplayName
		}
	}
	return names, nil
}
