package config

import (
	"strconv"
	"strings"
)

// applyEnv overrides scalar settings from DUTYROSTER_* variables.
func (c *Config) applyEnv(getenv func(string) string) {
	strs := map[string]*string{
		"ADDR":            &c.Server.Addr,
		"BASE_URL":        &c.Server.BaseURL,
		"DB_PATH":         &c.Database.Path,
		"LOG_LEVEL":       &c.Log.Level,
		"LOG_FORMAT":      &c.Log.Format,
		"TIMEZONE":        &c.Timezone,
		"TIE_BREAK":       &c.Rotation.TieBreak,
		"RESUBMIT_POLICY": &c.Completion.ResubmitPolicy,
		"CRON_WEEKLY":     &c.Cron.Weekly,
		"CRON_DAILY":      &c.Cron.Daily,
		"POSTMARK_TOKEN":  &c.Notify.Email.PostmarkToken,
		"EMAIL_FROM":      &c.Notify.Email.From,
		"ATTACHMENTS_DIR": &c.Attachments.Dir,
		"S3_ENDPOINT":     &c.Attachments.S3.Endpoint,
		"S3_BUCKET":       &c.Attachments.S3.Bucket,
		"S3_REGION":       &c.Attachments.S3.Region,
		"S3_ACCESS_KEY":   &c.Attachments.S3.AccessKey,
		"S3_SECRET_KEY":   &c.Attachments.S3.SecretKey,
		"S3_PREFIX":       &c.Attachments.S3.Prefix,
	}
	for name, dst := range strs {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WINDOW_DAYS":   &c.Rotation.WindowDays,
		"JPEG_QUALITY":  &c.Attachments.Quality,
		"MAX_DIMENSION": &c.Attachments.MaxDimension,
		"SUBMIT_RATE":   &c.Server.SubmitRate,
	}
	for name, dst := range ints {
		if n, err := strconv.Atoi(getenv(envPrefix + name)); err == nil {
			*dst = n
		}
	}

	bools := map[string]*bool{
		"CRON_ENABLED": &c.Cron.Enabled,
		"RUN_ON_START": &c.Cron.RunOnStart,
	}
	for name, dst := range bools {
		if b, err := strconv.ParseBool(getenv(envPrefix + name)); err == nil {
			*dst = b
		}
	}

	if v := getenv(envPrefix + "EMAIL_TO"); v != "" {
		c.Notify.Email.To = splitList(v)
	}
	// A webhook from the environment is added to the configured ones.
	if v := getenv(envPrefix + "WEBHOOK_URL"); v != "" {
		c.Notify.Webhooks = append(c.Notify.Webhooks, WebhookConfig{URL: v})
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
