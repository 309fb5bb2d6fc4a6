package cmd

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/tools/go/packages"
)

var servicesDir string

// listServicesCmd represents the list-services command
var listServicesCmd = &cobra.Command{
	Use:   "list-services",
	Short: "Lists all services discoverable via the service registry",
	Long: `Scans the codebase for declarations of registry.Key[...] to find all services
that modules can resolve at runtime. This provides a live view of the
services shared between modules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := findRegistryKeys(servicesDir)
		if err != nil {
			return fmt.Errorf("failed to find registry keys: %w", err)
		}

		if len(services) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No services found in the registry.")
			return nil
		}

		printServices(cmd.OutOrStdout(), services)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listServicesCmd)
	listServicesCmd.Flags().StringVar(&servicesDir, "dir", "./", "Module root to scan")
}

type ServiceInfo struct {
	Name string
	Key  string
	Type string
}

// findRegistryKeys scans the module for const or var declarations typed
// registry.Key[T] and initialised with a string literal.
func findRegistryKeys(root string) ([]ServiceInfo, error) {
	var services []ServiceInfo

	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:   root,
		Tests: false,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				genDecl, ok := n.(*ast.GenDecl)
				if !ok || (genDecl.Tok != token.CONST && genDecl.Tok != token.VAR) {
					return true
				}

				for _, spec := range genDecl.Specs {
					valueSpec, ok := spec.(*ast.ValueSpec)
					if !ok || valueSpec.Type == nil || len(valueSpec.Names) != len(valueSpec.Values) {
						continue
					}

					// Use the type checker to see if this is the correct `registry.Key`
					named, ok := pkg.TypesInfo.TypeOf(valueSpec.Type).(*types.Named)
					if !ok || named.Obj().Name() != "Key" || named.Obj().Pkg() == nil ||
						!strings.HasSuffix(named.Obj().Pkg().Path(), "internal/registry") {
						continue
					}

					typeArg := ""
					if args := named.TypeArgs(); args != nil && args.Len() == 1 {
						typeArg = types.TypeString(args.At(0), func(p *types.Package) string { return p.Name() })
					}

					for i, name := range valueSpec.Names {
						lit, ok := valueSpec.Values[i].(*ast.BasicLit)
						if !ok || lit.Kind != token.STRING {
							continue
						}
						key, err := strconv.Unquote(lit.Value)
						if err != nil {
							continue
						}
						services = append(services, ServiceInfo{Name: name.Name, Key: key, Type: typeArg})
					}
				}
				return true
			})
		}
	}

	sort.Slice(services, func(i, j int) bool { return services[i].Key < services[j].Key })
	return services, nil
}

func printServices(out io.Writer, services []ServiceInfo) {
	fmt.Fprintln(out, "Available Services in the Registry:")
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tTYPE")
	fmt.Fprintln(w, "---\t----\t----")
	for _, s := range services {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, s.Name, s.Type)
	}
	w.Flush()
}
