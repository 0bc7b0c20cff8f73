package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// endpointsCmd represents the endpoints command
var endpointsCmd = &cobra.Command{
	Use:   "endpoints [module] [endpoint]",
	Short: "List modules and endpoints of the configured game",
	Long: `Without arguments, list every module and its endpoints. With a module,
list its endpoints with a short description. With a module and an endpoint,
print the endpoint documentation and its parameters.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runEndpoints,
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	api, err := newAPI(cfg.Application.Region)
	if err != nil {
		return err
	}

	switch len(args) {
	case 0:
		fmt.Println(api)
		for _, name := range api.Modules() {
			m, err := api.Module(name)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", name, strings.Join(m.Endpoints(), ", "))
		}
	case 1:
		m, err := api.Module(args[0])
		if err != nil {
			return err
		}
		for _, name := range m.Endpoints() {
			e, err := m.Endpoint(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-20s %s\n", name, firstLine(e.Doc))
		}
	default:
		m, err := api.Module(args[0])
		if err != nil {
			return err
		}
		e, err := m.Endpoint(args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s%s\n\n", api.BaseURL(), e.Path())
		fmt.Print(e.Help())
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
