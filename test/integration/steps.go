package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	instance     *ServerInstance
	client       *http.Client
	jwtSecret    string
	authToken    string
	response     *http.Response
	responseBody []byte
	remembered   map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:         tc,
		client:     &http.Client{Timeout: 10 * time.Second},
		remembered: make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^an empty Ezra server is running$`, s.anEmptyServerIsRunning)
	sc.Step(`^an Ezra server is running with JWT secret "([^"]*)"$`, s.aServerIsRunningWithJWTSecret)
	sc.Step(`^I am authenticated as "([^"]*)"$`, s.iAmAuthenticatedAs)

	// Request steps
	sc.Step(`^I send a (GET|POST|PUT|DELETE) request to "([^"]*)"$`, s.iSendARequestTo)
	sc.Step(`^I send a (POST|PUT) request to "([^"]*)" with body:$`, s.iSendARequestWithBody)
	sc.Step(`^I create (\d+) records? in "([^"]*)"$`, s.iCreateRecordsIn)
	sc.Step(`^I delete the record at position (\d+) of "([^"]*)"$`, s.iDeleteTheRecordAtPosition)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response error should be "([^"]*)"$`, s.theResponseErrorShouldBe)
	sc.Step(`^I remember the response field "([^"]*)" as "([^"]*)"$`, s.iRememberTheResponseField)
	sc.Step(`^the response field "([^"]*)" should equal the remembered "([^"]*)"$`, s.theResponseFieldShouldEqualRemembered)
	sc.Step(`^the response should be a list of (\d+) records?$`, s.theResponseShouldBeAListOf)
	sc.Step(`^the records should have distinct ids$`, s.theRecordsShouldHaveDistinctIDs)
	sc.Step(`^the record names should be "([^"]*)"$`, s.theRecordNamesShouldBe)

	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		s.stopServer()
		return ctx, nil
	})
}

// Background steps

func (s *StepsContext) startServer(cfg ServerConfig) error {
	s.stopServer()
	instance, err := StartServer(context.Background(), s.tc, cfg)
	if err != nil {
		return err
	}
	s.instance = instance
	s.jwtSecret = cfg.JWTSecret
	s.authToken = ""
	return nil
}

func (s *StepsContext) stopServer() {
	if s.instance != nil {
		s.instance.Stop()
		s.instance = nil
	}
}

func (s *StepsContext) anEmptyServerIsRunning() error {
	return s.startServer(ServerConfig{})
}

func (s *StepsContext) aServerIsRunningWithJWTSecret(secret string) error {
	return s.startServer(ServerConfig{JWTSecret: secret})
}

func (s *StepsContext) iAmAuthenticatedAs(subject string) error {
	if s.jwtSecret == "" {
		return fmt.Errorf("server is running without a JWT secret")
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

// Request steps

// expand replaces {name} with remembered values
func (s *StepsContext) expand(path string) string {
	for name, value := range s.remembered {
		path = strings.ReplaceAll(path, "{"+name+"}", value)
	}
	return path
}

func (s *StepsContext) doRequest(method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, s.instance.ServerURL+s.expand(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) iSendARequestTo(method, path string) error {
	return s.doRequest(method, path, nil)
}

func (s *StepsContext) iSendARequestWithBody(method, path string, body *godog.DocString) error {
	return s.doRequest(method, path, []byte(body.Content))
}

func (s *StepsContext) iCreateRecordsIn(count int, collection string) error {
	singular := strings.TrimSuffix(collection, "s")
	for i := 1; i <= count; i++ {
		body := fmt.Sprintf(`{"name":"%s-%d"}`, singular, i)
		if err := s.doRequest(http.MethodPost, "/api/"+collection, []byte(body)); err != nil {
			return err
		}
		if err := s.theResponseStatusShouldBe(http.StatusCreated); err != nil {
			return err
		}
	}
	return nil
}

func (s *StepsContext) iDeleteTheRecordAtPosition(position int, collection string) error {
	if err := s.doRequest(http.MethodGet, "/api/"+collection, nil); err != nil {
		return err
	}
	records, err := s.records()
	if err != nil {
		return err
	}
	if position < 1 || position > len(records) {
		return fmt.Errorf("position %d out of range (%d records)", position, len(records))
	}

	id, _ := records[position-1]["id"].(string)
	if err := s.doRequest(http.MethodDelete, "/api/"+collection+"/"+id, nil); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusOK)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response == nil {
		return fmt.Errorf("no request has been sent")
	}
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) object() (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(s.responseBody, &obj); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w: %s", err, string(s.responseBody))
	}
	return obj, nil
}

func (s *StepsContext) records() ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(s.responseBody, &list); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w: %s", err, string(s.responseBody))
	}
	return list, nil
}

func (s *StepsContext) field(name string) (string, error) {
	obj, err := s.object()
	if err != nil {
		return "", err
	}
	value, ok := obj[name]
	if !ok {
		return "", fmt.Errorf("response has no field %q: %s", name, string(s.responseBody))
	}
	return fmt.Sprint(value), nil
}

func (s *StepsContext) theResponseFieldShouldBe(name, expected string) error {
	value, err := s.field(name)
	if err != nil {
		return err
	}
	if value != expected {
		return fmt.Errorf("expected %s to be %q, got %q", name, expected, value)
	}
	return nil
}

func (s *StepsContext) theResponseErrorShouldBe(expected string) error {
	return s.theResponseFieldShouldBe("error", expected)
}

func (s *StepsContext) iRememberTheResponseField(name, as string) error {
	value, err := s.field(name)
	if err != nil {
		return err
	}
	s.remembered[as] = value
	return nil
}

func (s *StepsContext) theResponseFieldShouldEqualRemembered(name, as string) error {
	expected, ok := s.remembered[as]
	if !ok {
		return fmt.Errorf("nothing remembered as %q", as)
	}
	return s.theResponseFieldShouldBe(name, expected)
}

func (s *StepsContext) theResponseShouldBeAListOf(count int) error {
	records, err := s.records()
	if err != nil {
		return err
	}
	if len(records) != count {
		return fmt.Errorf("expected %d records, got %d", count, len(records))
	}
	return nil
}

func (s *StepsContext) theRecordsShouldHaveDistinctIDs() error {
	records, err := s.records()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		id := fmt.Sprint(record["id"])
		if seen[id] {
			return fmt.Errorf("duplicate id %q", id)
		}
		seen[id] = true
	}
	return nil
}

func (s *StepsContext) theRecordNamesShouldBe(expected string) error {
	records, err := s.records()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, fmt.Sprint(record["name"]))
	}
	if got := strings.Join(names, ","); got != expected {
		return fmt.Errorf("expected names %q, got %q", expected, got)
	}
	return nil
}
