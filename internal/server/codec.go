package server

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fedtech/jobtracker/internal/extract"
	"github.com/fedtech/jobtracker/internal/jobs"
)

func jobToMap(j jobs.Job) map[string]any {
	m := map[string]any{
		"id":          j.ID,
		"title":       j.Title,
		"company":     j.Company,
		"location":    j.Location,
		"salary":      j.Salary,
		"status":      string(j.Status),
		"dateApplied": j.DateApplied,
		"notes":       j.Notes,
		"initials":    jobs.Initials(j.Company),
	}
	if j.Logo != "" {
		m["logo"] = j.Logo
	}
	return m
}

func jobToStruct(j jobs.Job) (*structpb.Struct, error) {
	return structpb.NewStruct(jobToMap(j))
}

func jobsToStruct(list []jobs.Job) (*structpb.Struct, error) {
	items := make([]any, 0, len(list))
	for _, j := range list {
		items = append(items, jobToMap(j))
	}
	return structpb.NewStruct(map[string]any{"jobs": items})
}

func draftToMap(d jobs.Draft) map[string]any {
	m := map[string]any{
		"title":       d.Title,
		"company":     d.Company,
		"location":    d.Location,
		"salary":      d.Salary,
		"status":      string(d.Status),
		"dateApplied": d.DateApplied,
		"notes":       d.Notes,
	}
	if d.Logo != "" {
		m["logo"] = d.Logo
	}
	return m
}

func recordToMap(r extract.Record) map[string]any {
	return map[string]any{
		"title":    r.Title,
		"company":  r.Company,
		"location": r.Location,
		"salary":   r.Salary,
		"notes":    r.Notes,
	}
}

// str reads a string field; missing fields and non-strings read as "".
func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// draftFromStruct reads a draft, starting from base for fields that are absent.
func draftFromStruct(s *structpb.Struct, base jobs.Draft) (jobs.Draft, error) {
	d := base
	for key, dst := range map[string]*string{
		"title":       &d.Title,
		"company":     &d.Company,
		"location":    &d.Location,
		"salary":      &d.Salary,
		"dateApplied": &d.DateApplied,
		"notes":       &d.Notes,
		"logo":        &d.Logo,
	} {
		v, ok := s.GetFields()[key]
		if !ok {
			continue
		}
		if _, isStr := v.GetKind().(*structpb.Value_StringValue); !isStr {
			return jobs.Draft{}, fmt.Errorf("field %q must be a string", key)
		}
		*dst = v.GetStringValue()
	}
	if v, ok := s.GetFields()["status"]; ok {
		st, err := jobs.StatusFromInput(v.GetStringValue())
		if err != nil {
			return jobs.Draft{}, err
		}
		d.Status = st
	}
	return d, nil
}
