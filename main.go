// ABOUTME: Entry point for deal intelligence MCP server and CLI
// ABOUTME: Routes to MCP server or CLI commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/harperreed/dealsense/cli"
	"github.com/harperreed/dealsense/db"
	"github.com/harperreed/dealsense/pipeline"
	"github.com/joho/godotenv"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/dealsense/dealsense.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dealsense version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		// MCP server speaks JSON over stdio, keep startup quiet
		database, err := db.OpenDatabase(getDatabasePath(*dbPath))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		if err := cli.MCPCommand(pipeline.New(database)); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "deals":
		finalDBPath := getDatabasePath(*dbPath)
		database, err := db.OpenDatabase(finalDBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		log.Printf("Deal database: %s", finalDBPath)

		if *initOnly {
			log.Println("Database initialized successfully")
			os.Exit(0)
		}

		if len(commandArgs) == 0 {
			fmt.Println("Error: deals requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		orch := pipeline.New(database)
		dealCommand := commandArgs[0]
		dealArgs := commandArgs[1:]

		switch dealCommand {
		// Opportunity commands
		case "add":
			if err := cli.AddOpportunityCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "list":
			if err := cli.ListOpportunitiesCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "show":
			if err := cli.ShowOpportunityCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "update":
			if err := cli.UpdateOpportunityCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "advance":
			if err := cli.AdvanceStageCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "delete":
			if err := cli.DeleteOpportunityCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}

		// Stakeholder commands
		case "add-stakeholder":
			if err := cli.AddStakeholderCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "update-stakeholder":
			if err := cli.UpdateStakeholderCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}

		// Communication commands
		case "add-communication":
			if err := cli.AddCommunicationCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "process-communication":
			if err := cli.ProcessCommunicationCommand(orch, dealArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}

		default:
			fmt.Printf("Unknown deals command: %s\n\n", dealCommand)
			printUsage()
			os.Exit(1)
		}

	case "portfolio":
		database, err := db.OpenDatabase(getDatabasePath(*dbPath))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		if err := cli.PortfolioCommand(pipeline.New(database), commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "focus":
		database, err := db.OpenDatabase(getDatabasePath(*dbPath))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		if err := cli.FocusCommand(pipeline.New(database), commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func getDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("DEALSENSE_DB_PATH"); env != "" {
		return env
	}
	return filepath.Join(xdg.DataHome, "dealsense", "dealsense.db")
}

func printUsage() {
	fmt.Printf(`dealsense v%s - Deal intelligence scoring and recommendations

USAGE:
  dealsense [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/dealsense/dealsense.db)
  --init                 Initialize database and exit (use with 'deals')

COMMANDS:
  mcp                    Start MCP server for agent integration
  deals                  Opportunity management commands
  portfolio              Portfolio summary across all opportunities
  focus                  Weekly focus digest

DEAL COMMANDS:
  dealsense deals add       Create a new opportunity
    --name <name>             Opportunity name (required)
    --counterparty <name>     Counterparty organization (required)
    --industry <industry>     Industry label
    --value <cents>           Estimated value in cents
    --currency <code>         Currency code (default: USD)

  dealsense deals list      List opportunities
    --stage <stage>           Filter by stage
    --counterparty <name>     Filter by counterparty
    --query <text>            Search name and counterparty
    --min-value <cents>       Minimum value filter
    --max-value <cents>       Maximum value filter
    --limit <n>               Max results (default: 50)

  dealsense deals show <id>              Show full opportunity view
  dealsense deals update [flags] <id>    Update opportunity fields
    --name <name>             Updated name
    --counterparty <name>     Updated counterparty
    --industry <industry>     Updated industry
    --value <cents>           Updated value in cents

  dealsense deals advance [flags] <id>   Advance to the next stage
    --reason <text>           Why the stage changed

  dealsense deals delete <id>            Delete an opportunity and its records

  dealsense deals add-stakeholder        Add a stakeholder
    --opportunity <id>        Opportunity ID (required)
    --name <name>             Stakeholder name (required)
    --title <title>           Job title
    --email <email>           Email address
    --role <role>             champion, decision_maker, evaluator, blocker, user
    --sentiment <s>           positive, neutral, negative (default: neutral)

  dealsense deals update-stakeholder [flags] <id>  Update a stakeholder
    --opportunity <id>        Opportunity ID (required)
    --role <role>             Updated role
    --sentiment <s>           Updated sentiment
    --quote <text>            Key quote to append
    --concern <text>          Concern to append

  dealsense deals add-communication      Log a communication
    --opportunity <id>        Opportunity ID (required)
    --type <type>             meeting, call, email, message
    --subject <text>          Subject line
    --content <text>          Full content (required)
    --participants <a,b>      Comma-separated participant names
    --timestamp <rfc3339>     When it happened (default: now)

  dealsense deals process-communication [flags] <id>  Fold insights into intelligence
    --opportunity <id>        Opportunity ID (required)
    --insight <text>          Extracted insight (repeatable)

PORTFOLIO:
  dealsense portfolio       Pipeline metrics, stage rollup, priorities
  dealsense focus           Top recommended actions for the week

MCP SERVER:
  dealsense mcp             Start MCP server (stdio transport)
`, version)
}
