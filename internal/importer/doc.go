// Package importer loads teams, projects and tasks from an xlsx roadmap
// spreadsheet. The first row is a header; every following row is one task:
//
//	Team | Project | Task | Description | Assignee email | Deadline | Status | Complete %
//
// Teams and projects are created by name when missing and tasks are upserted
// by (project, name), so importing the same sheet twice is harmless.
// A registered assignee without a team joins the team of their first row.
package importer
