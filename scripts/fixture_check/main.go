package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/repository"
	"github.com/noah-isme/dance-class-api/internal/service"
)

type finding struct {
	Level   string
	Subject string
	Message string
}

func main() {
	var (
		dataDir  string
		baseURL  string
		timezone string
		promote  string
		write    bool
		timeout  time.Duration
	)

	flag.StringVar(&dataDir, "data", "data", "Directory holding classes.json, users.json and choreographers.json")
	flag.StringVar(&baseURL, "base-url", "", "Fetch fixtures over HTTP instead of reading -data")
	flag.StringVar(&timezone, "tz", "", "Timezone for dateTime values without an offset")
	flag.StringVar(&promote, "promote", "", "Comma separated submitted class ids to grant featured placement")
	flag.BoolVar(&write, "write", false, "Persist promotions back to classes.json")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "Fetch timeout")
	flag.Parse()

	loc := time.Local
	if timezone != "" {
		parsed, err := time.LoadLocation(timezone)
		if err != nil {
			log.Fatalf("invalid timezone: %v", err)
		}
		loc = parsed
	}

	var source repository.CatalogSource
	if baseURL != "" {
		source = repository.NewHTTPSource(baseURL, nil, timeout)
	} else {
		fileSource, err := repository.NewFileSource(dataDir)
		if err != nil {
			log.Fatalf("failed to open data dir: %v", err)
		}
		source = fileSource
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*timeout)
	defer cancel()

	catalogSvc := service.NewCatalogService(source, loc, nil, nil)
	report, err := catalogSvc.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}
	catalog := catalogSvc.Snapshot()
	findings := inspect(catalog, report)

	promoted := make([]string, 0)
	if ids := splitIDs(promote); len(ids) > 0 {
		classes := service.NewClassService(catalogSvc, nil, nil, nil)
		for _, id := range ids {
			if _, err := classes.Promote(id); err != nil {
				findings = append(findings, finding{Level: "ERROR", Subject: "class " + id, Message: err.Error()})
				continue
			}
			promoted = append(promoted, id)
		}
	}

	printReport(source.Describe(), report, findings, promoted)

	if write && len(promoted) > 0 {
		if baseURL != "" {
			log.Fatalf("-write requires a local -data directory")
		}
		if err := writeStatuses(filepath.Join(dataDir, repository.DocumentClasses), promoted, models.ClassStatusFeatured); err != nil {
			log.Fatalf("failed to write %s: %v", repository.DocumentClasses, err)
		}
		fmt.Printf("Wrote %d promotion(s) to %s\n", len(promoted), repository.DocumentClasses)
	}

	errorsFound := 0
	for _, f := range findings {
		if f.Level == "ERROR" {
			errorsFound++
		}
	}
	if errorsFound > 0 {
		os.Exit(1)
	}
}

func inspect(catalog *models.Catalog, report *service.CatalogLoadReport) []finding {
	findings := make([]finding, 0)
	for _, msg := range report.Errors {
		findings = append(findings, finding{Level: "ERROR", Subject: "catalog", Message: msg})
	}
	for _, rec := range report.Rejected {
		findings = append(findings, finding{Level: "ERROR", Subject: rec.Document, Message: rec.Error()})
	}

	now := time.Now()
	for _, class := range catalog.Classes {
		user, ok := catalog.UserByID(class.ChoreographerID)
		switch {
		case !ok:
			findings = append(findings, finding{Level: "WARN", Subject: "class " + class.ID, Message: "choreographer " + class.ChoreographerID + " is not a known user"})
		case !user.Role.CanTeach():
			findings = append(findings, finding{Level: "WARN", Subject: "class " + class.ID, Message: user.Name + " cannot teach but owns this class"})
		}
		if class.Status == models.ClassStatusSubmitted {
			findings = append(findings, finding{Level: "INFO", Subject: "class " + class.ID, Message: "awaiting featured placement"})
		}
		if !class.DateTime.After(now) && class.Status == models.ClassStatusFeatured {
			findings = append(findings, finding{Level: "INFO", Subject: "class " + class.ID, Message: "featured class is in the past"})
		}
	}
	return findings
}

func printReport(source string, report *service.CatalogLoadReport, findings []finding, promoted []string) {
	fmt.Println("Fixture Check Report")
	fmt.Println("====================")
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("Classes: %d | Users: %d | Rejected: %d | Load time: %s\n", report.Classes, report.Users, len(report.Rejected), report.Duration)
	for _, f := range findings {
		fmt.Printf("[%s] %s: %s\n", f.Level, f.Subject, f.Message)
	}
	if len(promoted) > 0 {
		fmt.Printf("Promoted to featured: %s\n", strings.Join(promoted, ", "))
	}
}

// writeStatuses rewrites the status of the listed classes, leaving every
// other field as it was in the document.
func writeStatuses(path string, ids []string, status models.ClassStatus) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	var classes []map[string]interface{}
	if err := json.Unmarshal(doc["classes"], &classes); err != nil {
		return err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for _, class := range classes {
		id, _ := class["id"].(string)
		if _, ok := wanted[id]; ok {
			class["status"] = string(status)
		}
	}

	encoded, err := json.Marshal(classes)
	if err != nil {
		return err
	}
	doc["classes"] = encoded
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}

func splitIDs(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
