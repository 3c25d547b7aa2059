package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
	Host           string `env:"HOST,default=0.0.0.0"`
	Port           int    `env:"PORT,required=true"`
	DebugPort      int    `env:"DEBUG_PORT,default=8081"`
	JwtSecret      string `env:"JWT_SECRET,required=true"`
	DirectoryAddr  string `env:"DIRECTORY_ADDR,required=true"`

	LimitMessages    int    `env:"LIMIT_MESSAGES,default=50"`
	MaxContentLength int    `env:"MAX_CONTENT_LENGTH,default=5000"`
	PreviewLength    int    `env:"PREVIEW_LENGTH,default=100"`
	DefaultLocale    string `env:"DEFAULT_LOCALE,default=en"`
	CharReplacement  string `env:"CHARACTER_REPLACEMENT,default=*"`

	TypingTTL             time.Duration `env:"TYPING_TTL,default=10s"`
	PresencePurgeInterval time.Duration `env:"PRESENCE_PURGE_INTERVAL,default=1m"`
	ValkeyAddr            string        `env:"VALKEY_ADDR"`

	NotificationBufferSize int           `env:"NOTIFICATION_BUFFER_SIZE,default=1024"`
	NumberOfDispatchers    int           `env:"NUMBER_OF_DISPATCHERS,default=4"`
	AttemptTimeout         time.Duration `env:"ATTEMPT_TIMEOUT,default=5s"`
	DispatchTimeout        time.Duration `env:"DISPATCH_TIMEOUT,default=8s"`
	RetryInterval          time.Duration `env:"RETRY_INTERVAL,default=1m"`
	RetryWindow            time.Duration `env:"RETRY_WINDOW,default=1h"`
	MaxDeliveryAttempts    int           `env:"MAX_DELIVERY_ATTEMPTS,default=3"`
	RestartInterval        time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HealthInterval         time.Duration `env:"HEALTH_INTERVAL,default=30s"`

	MailgunDomain           string `env:"MAILGUN_DOMAIN"`
	MailgunApiKey           string `env:"MAILGUN_API_KEY"`
	EmailFrom               string `env:"EMAIL_FROM,default=Rental <no-reply@rental.local>"`
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// Validate catches combinations go-env cannot express.
func (c Config) Validate() error {
	if c.DispatchTimeout < c.AttemptTimeout {
		return fmt.Errorf("DISPATCH_TIMEOUT (%s) must not be shorter than ATTEMPT_TIMEOUT (%s)", c.DispatchTimeout, c.AttemptTimeout)
	}
	if (c.MailgunDomain == "") != (c.MailgunApiKey == "") {
		return fmt.Errorf("MAILGUN_DOMAIN and MAILGUN_API_KEY go together")
	}
	if c.NumberOfDispatchers < 1 {
		return fmt.Errorf("NUMBER_OF_DISPATCHERS must be positive, got %d", c.NumberOfDispatchers)
	}
	return nil
}
