package config

import "os"

type AWS struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

type Config struct {
	FacebookAppID       string
	FacebookAppSecret   string
	FacebookRedirectURI string
	FacebookPageID      string
	GraphBaseURL        string
	PostsTable          string
	SchedulesTable      string
	TokensTable         string
	PublishHistoryTable string
	MediaBucket         string
	MediaBaseURL        string
	AWS                 AWS
	RedisURI            string
	FrontendURL         string
	SecretKey           string
	CookieName          string
}

func LoadConfig() *Config {
	return &Config{
		FacebookAppID:       getEnv("FACEBOOK_APP_ID", ""),
		FacebookAppSecret:   getEnv("FACEBOOK_APP_SECRET", ""),
		FacebookRedirectURI: getEnv("FACEBOOK_REDIRECT_URI", ""),
		FacebookPageID:      getEnv("FACEBOOK_PAGE_ID", ""),
		GraphBaseURL:        getEnv("GRAPH_BASE_URL", "https://graph.facebook.com/v21.0"),
		PostsTable:          getEnv("POSTS_TABLE", "posts"),
		SchedulesTable:      getEnv("SCHEDULES_TABLE", "schedules"),
		TokensTable:         getEnv("TOKENS_TABLE", "tokens"),
		PublishHistoryTable: getEnv("PUBLISH_HISTORY_TABLE", "publish_history"),
		MediaBucket:         getEnv("MEDIA_BUCKET", ""),
		MediaBaseURL:        getEnv("MEDIA_BASE_URL", ""),
		AWS: AWS{
			Region:    getEnv("AWS_REGION", "us-east-1"),
			AccessKey: getEnv("AWS_ACCESS_KEY", ""),
			SecretKey: getEnv("AWS_SECRET_KEY", ""),
			Endpoint:  getEnv("AWS_ENDPOINT", ""),
		},
		RedisURI:    getEnv("REDIS_URI", "127.0.0.1:6379"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:   getEnv("SECRET_KEY", ""),
		CookieName:  getEnv("COOKIE_NAME", "autosocial_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
