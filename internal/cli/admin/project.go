package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/riskpilot-ai/riskpilot/internal/config"
	"github.com/riskpilot-ai/riskpilot/internal/database"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
	"github.com/riskpilot-ai/riskpilot/internal/repository"
)

func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
		Long:  "Create and list risk analysis projects",
	}

	cmd.AddCommand(ProjectCreateCmd())
	cmd.AddCommand(ProjectListCmd())

	return cmd
}

func ProjectCreateCmd() *cobra.Command {
	var (
		description string
		budget      float64
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Long:  "Create a new project with the specified name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runProjectCreate(args[0], description, budget, outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().Float64Var(&budget, "budget", 0, "Project budget")

	return cmd
}

func runProjectCreate(name, description string, budget float64, outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	projectRepo := repository.NewProjectRepository(pool)

	project := &domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Budget:      budget,
		CreatedAt:   time.Now().UTC(),
	}

	if err := domain.ValidateProject(project); err != nil {
		return err
	}

	if err := projectRepo.Create(ctx, project); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         project.ID,
			"name":       project.Name,
			"budget":     project.Budget,
			"created_at": project.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Project created: %s (%s)\n", project.Name, project.ID)
	}

	return nil
}

func ProjectListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		Long:  "List all projects in the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runProjectList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runProjectList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	projectRepo := repository.NewProjectRepository(pool)

	projects, err := projectRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(projects))
		for i, project := range projects {
			data[i] = map[string]interface{}{
				"id":           project.ID,
				"name":         project.Name,
				"budget":       project.Budget,
				"actual_spend": project.ActualSpend,
				"created_at":   project.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(projects) == 0 {
			fmt.Println("No projects found")
			return nil
		}
		fmt.Println("Projects:")
		for _, project := range projects {
			fmt.Printf("  %s: %s (budget: %.2f, spend: %.2f)\n",
				project.ID, project.Name, project.Budget, project.ActualSpend)
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pool, nil
}
