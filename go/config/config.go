// Package config contains the configuration structs for the three
// clotributor binaries and a JSON5 loader shared between them.
package config

import (
	"fmt"
	"io"
	"reflect"

	"github.com/flynn/json5"

	"github.com/cncf/clotributor/go/skerr"
	"github.com/cncf/clotributor/go/util"
)

// DefaultAPIServerAddr is used when apiserver.addr is not set.
const DefaultAPIServerAddr = "127.0.0.1:8000"

// Database holds the connection parameters for the PostgreSQL database.
type Database struct {
	// Host of the database server.
	Host string `json:"host"`

	// Port the database server listens on.
	Port int `json:"port"`

	// Name of the database.
	Name string `json:"dbname"`

	// User to connect as.
	User string `json:"dbuser"`

	// Password for User. May be empty when the server trusts the connection.
	Password string `json:"dbpassword" optional:"true"`
}

// ConnString returns a connection string suitable for pgxpool.Connect.
func (d Database) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.Name)
}

// Logging controls how log entries are emitted.
type Logging struct {
	// Format of the log output, either "json" or "pretty". Defaults to
	// "pretty" when unset.
	Format string `json:"format" optional:"true"`
}

// Creds holds the credentials used to talk to external services.
type Creds struct {
	// GitHubTokens is the pool of GitHub personal access tokens used to
	// query the GraphQL API. Required by the tracker, which validates it at
	// startup so that a more specific error can be returned.
	GitHubTokens []string `json:"githubTokens" optional:"true"`
}

// Registrar is the registrar section of the configuration file.
type Registrar struct {
	// Concurrency is the maximum number of foundations processed at once.
	Concurrency int `json:"concurrency"`
}

// Tracker is the tracker section of the configuration file.
type Tracker struct {
	// Concurrency is the maximum number of repositories tracked at once.
	Concurrency int `json:"concurrency"`
}

// APIServer is the apiserver section of the configuration file.
type APIServer struct {
	// Addr is the address the HTTP server binds to. Defaults to
	// DefaultAPIServerAddr when unset.
	Addr string `json:"addr" optional:"true"`

	// StaticPath is the directory the web application is served from.
	StaticPath string `json:"staticPath"`
}

// A single configuration file can carry the sections of all three binaries.
// Each binary decodes the file into its own subset below, so sections meant
// for the other binaries are ignored and only the keys the binary needs are
// validated.

// RegistrarConfig is the subset of the configuration file read by the
// clotributor-registrar binary.
type RegistrarConfig struct {
	DB        Database  `json:"db"`
	Log       Logging   `json:"log"`
	Registrar Registrar `json:"registrar"`
}

// TrackerConfig is the subset of the configuration file read by the
// clotributor-tracker binary.
type TrackerConfig struct {
	DB      Database `json:"db"`
	Log     Logging  `json:"log"`
	Creds   Creds    `json:"creds"`
	Tracker Tracker  `json:"tracker"`
}

// APIServerConfig is the subset of the configuration file read by the
// clotributor-apiserver binary.
type APIServerConfig struct {
	DB        Database  `json:"db"`
	Log       Logging   `json:"log"`
	APIServer APIServer `json:"apiserver"`
}

// LoadFromJSON5 reads the contents of path and tries to decode the JSON5
// there into the provided struct. The passed in struct pointer is expected to
// have "json" struct tags for all fields. An error will be returned if any
// non-struct, non-bool field is its zero value *unless* it is tagged with
// `optional:"true"`.
func LoadFromJSON5(dst interface{}, path string) error {
	// Elem() dereferences a pointer or panics.
	rType := reflect.TypeOf(dst).Elem()
	if rType.Kind() != reflect.Struct {
		return skerr.Fmt("Input must be a pointer to a struct, got %T", dst)
	}
	err := util.WithReadFile(path, func(r io.Reader) error {
		return json5.NewDecoder(r).Decode(&dst)
	})
	if err != nil {
		return skerr.Wrapf(err, "reading config at %s", path)
	}

	rValue := reflect.Indirect(reflect.ValueOf(dst))
	return checkRequired(rValue)
}

// checkRequired returns an error if any non-struct, non-bool fields of the
// given value have a zero value *unless* they have an optional tag with value
// true.
func checkRequired(rValue reflect.Value) error {
	rType := rValue.Type()
	for i := 0; i < rValue.NumField(); i++ {
		field := rType.Field(i)
		if field.Tag.Get("optional") == "true" {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := checkRequired(rValue.Field(i)); err != nil {
				return err
			}
			continue
		}
		if field.Type.Kind() == reflect.Bool {
			// For ease of use, booleans aren't compared against their zero
			// value, since that would effectively make them required to be
			// true always.
			continue
		}
		if field.Tag.Get("json") == "" {
			continue
		}
		// defaults to being required
		if rValue.Field(i).IsZero() {
			return skerr.Fmt("Required %s to be non-zero", field.Name)
		}
	}
	return nil
}
