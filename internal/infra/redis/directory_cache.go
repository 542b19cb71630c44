package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"scoreboard-service/internal/app"
	"scoreboard-service/internal/domain"
)

// DirectoryCache caches directory lookups in Redis hashes
// (HSET student:{id} display_name/class_id/teacher_id) in front of the slow
// directory. Entries expire so class reassignments show up within the TTL.
type DirectoryCache struct {
	client *redis.Client
	inner  app.Directory
	ttl    time.Duration
	sf     singleflight.Group
}

func NewDirectoryCache(client *redis.Client, inner app.Directory, ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{client: client, inner: inner, ttl: ttl}
}

func (d *DirectoryCache) StudentProfile(ctx context.Context, studentID string) (domain.StudentProfile, error) {
	key := d.studentKey(studentID)

	if fields, err := d.client.HGetAll(ctx, key).Result(); err == nil && len(fields) > 0 {
		return domain.StudentProfile{
			ID:          studentID,
			DisplayName: fields["display_name"],
			ClassID:     fields["class_id"],
			TeacherID:   fields["teacher_id"],
		}, nil
	}

	result, err, _ := d.sf.Do("student:"+studentID, func() (interface{}, error) {
		profile, err := d.inner.StudentProfile(ctx, studentID)
		if err != nil {
			return domain.StudentProfile{}, err
		}
		d.fillStudent(ctx, key, profile)
		return profile, nil
	})
	if err != nil {
		return domain.StudentProfile{}, err
	}
	return result.(domain.StudentProfile), nil
}

func (d *DirectoryCache) TeacherClass(ctx context.Context, teacherID string) (string, error) {
	key := d.teacherKey(teacherID)

	if classID, err := d.client.Get(ctx, key).Result(); err == nil && classID != "" {
		return classID, nil
	}

	result, err, _ := d.sf.Do("teacher:"+teacherID, func() (interface{}, error) {
		classID, err := d.inner.TeacherClass(ctx, teacherID)
		if err != nil {
			return "", err
		}
		// best-effort fill
		_ = d.client.Set(ctx, key, classID, d.ttl).Err()
		return classID, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// DisplayNames serves cached names where possible and batches the misses
// through the inner directory.
func (d *DirectoryCache) DisplayNames(ctx context.Context, studentIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(studentIDs))

	var missed []string
	for _, id := range studentIDs {
		name, err := d.client.HGet(ctx, d.studentKey(id), "display_name").Result()
		if err == nil && name != "" {
			names[id] = name
		} else {
			missed = append(missed, id)
		}
	}
	if len(missed) == 0 {
		return names, nil
	}

	loaded, err := d.inner.DisplayNames(ctx, missed)
	if err != nil {
		return nil, err
	}
	for id, name := range loaded {
		names[id] = name
		// name-only fill; the full profile is cached on demand
		_ = d.client.HSet(ctx, d.studentKey(id), "display_name", name).Err()
		_ = d.client.Expire(ctx, d.studentKey(id), d.ttl).Err()
	}
	return names, nil
}

func (d *DirectoryCache) fillStudent(ctx context.Context, key string, profile domain.StudentProfile) {
	pipe := d.client.Pipeline()
	pipe.HSet(ctx, key,
		"display_name", profile.DisplayName,
		"class_id", profile.ClassID,
		"teacher_id", profile.TeacherID,
	)
	if d.ttl > 0 {
		pipe.Expire(ctx, key, d.ttl)
	}
	_, _ = pipe.Exec(ctx)
}

func (d *DirectoryCache) studentKey(studentID string) string {
	return "student:" + studentID
}

func (d *DirectoryCache) teacherKey(teacherID string) string {
	return "teacher:" + teacherID + ":class"
}
