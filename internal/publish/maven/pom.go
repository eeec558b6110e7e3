package maven

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/karmakrafts/modship/internal/publish"
)

// Coordinates identifies an artifact in a Maven repository.
type Coordinates struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// CoordinatesFor returns the coordinates of a release.
func CoordinatesFor(rel *publish.Release) Coordinates {
	return Coordinates{
		GroupID:    rel.Project.Group,
		ArtifactID: rel.Project.ArtifactID(),
		Version:    rel.Version,
	}
}

// String returns "group:artifact:version".
func (c Coordinates) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// Dir returns the repository directory "group/path/artifact/version".
func (c Coordinates) Dir() string {
	return strings.ReplaceAll(c.GroupID, ".", "/") + "/" + c.ArtifactID + "/" + c.Version
}

// FileName returns "<artifact>-<version>.<ext>".
func (c Coordinates) FileName(ext string) string {
	return c.ArtifactID + "-" + c.Version + "." + ext
}

// POM is the project object model published next to the artifact.
type POM struct {
	XMLName        xml.Name `xml:"http://maven.apache.org/POM/4.0.0 project"`
	XSI            string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`

	ModelVersion string `xml:"modelVersion"`
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	Name         string `xml:"name,omitempty"`
	Description  string `xml:"description,omitempty"`
	URL          string `xml:"url,omitempty"`

	Licenses        []License        `xml:"licenses>license,omitempty"`
	Developers      []Developer      `xml:"developers>developer,omitempty"`
	SCM             *SCM             `xml:"scm,omitempty"`
	IssueManagement *IssueManagement `xml:"issueManagement,omitempty"`
}

// License is a POM license entry.
type License struct {
	Name         string `xml:"name"`
	Distribution string `xml:"distribution"`
}

// Developer is a POM developer entry.
type Developer struct {
	ID   string `xml:"id"`
	Name string `xml:"name"`
	URL  string `xml:"url,omitempty"`
}

// SCM is the POM source control section.
type SCM struct {
	URL string `xml:"url"`
}

// IssueManagement is the POM issue tracker section.
type IssueManagement struct {
	System string `xml:"system"`
	URL    string `xml:"url"`
}

// NewPOM builds the POM for a release.
func NewPOM(rel *publish.Release) *POM {
	c := CoordinatesFor(rel)
	p := &POM{
		XSI:            "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "http://maven.apache.org/POM/4.0.0 https://maven.apache.org/xsd/maven-4.0.0.xsd",
		ModelVersion:   "4.0.0",
		GroupID:        c.GroupID,
		ArtifactID:     c.ArtifactID,
		Version:        c.Version,
		Name:           c.ArtifactID,
		Description:    rel.Project.Description,
		URL:            rel.Project.URL,
	}

	if rel.Project.License != "" {
		p.Licenses = []License{{Name: rel.Project.License, Distribution: "repo"}}
	}
	d := rel.Project.Developer
	p.Developers = []Developer{{ID: d.ID, Name: d.Name, URL: d.URL}}
	if url := strings.TrimSuffix(rel.Project.URL, "/"); url != "" {
		p.SCM = &SCM{URL: url}
		p.IssueManagement = &IssueManagement{System: "gitlab", URL: url + "/issues"}
	}
	return p
}

// Marshal encodes the POM with an XML declaration.
func (p *POM) Marshal() ([]byte, error) {
	out, err := xml.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding pom: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
