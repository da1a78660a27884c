package broker

import "os"

// Credentials holds the fixed operator credentials for the Angel One
// SmartAPI account. Loaded once at startup and immutable for the process
// lifetime.
type Credentials struct {
	APIKey     string
	Username   string
	Password   string
	TOTPSecret string
	ClientCode string
}

// CredentialsFromEnv reads the credential set from the environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		APIKey:     os.Getenv("ANGEL_ONE_API_KEY"),
		Username:   os.Getenv("ANGEL_ONE_USERNAME"),
		Password:   os.Getenv("ANGEL_ONE_PASSWORD"),
		TOTPSecret: os.Getenv("ANGEL_ONE_TOTP_SECRET"),
		ClientCode: os.Getenv("ANGEL_ONE_CLIENT_CODE"),
	}
}

// Validate checks that every required field is present. All missing
// fields are reported in a single ConfigurationError.
func (c Credentials) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"api_key", c.APIKey},
		{"username", c.Username},
		{"password", c.Password},
		{"totp_secret", c.TOTPSecret},
		{"client_code", c.ClientCode},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}
