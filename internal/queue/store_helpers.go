package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, file_name, origin_language, translate_language, use_correction, embed_subtitle, subtitle_path, status, error_message, result_json, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id            int64
		fileName      string
		originLang    sql.NullString
		translateLang sql.NullString
		useCorrection sql.NullInt64
		embedSubtitle sql.NullString
		subtitlePath  sql.NullString
		statusStr     string
		errorMessage  sql.NullString
		resultJSON    sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&fileName,
		&originLang,
		&translateLang,
		&useCorrection,
		&embedSubtitle,
		&subtitlePath,
		&statusStr,
		&errorMessage,
		&resultJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:                id,
		FileName:          fileName,
		OriginLanguage:    originLang.String,
		TranslateLanguage: translateLang.String,
		EmbedSubtitle:     EmbedMode(embedSubtitle.String),
		SubtitlePath:      subtitlePath.String,
		Status:            Status(statusStr),
		ErrorMessage:      errorMessage.String,
		ResultJSON:        resultJSON.String,
	}
	if useCorrection.Valid {
		job.UseCorrection = useCorrection.Int64 != 0
	}
	if job.EmbedSubtitle == "" {
		job.EmbedSubtitle = EmbedNone
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
