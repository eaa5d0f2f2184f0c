// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/docsnap/internal/classifier"
	"github.com/temirov/docsnap/internal/config"
	"github.com/temirov/docsnap/internal/extract"
	"github.com/temirov/docsnap/internal/report"
	"github.com/temirov/docsnap/internal/services/clipboard"
	"github.com/temirov/docsnap/internal/tokenizer"
	"github.com/temirov/docsnap/internal/utils"
)

const (
	outputFlagName       = "output"
	outputFlagShorthand  = "o"
	configFlagName       = "config"
	tokensFlagName       = "tokens"
	gitignoreFlagName    = "gitignore"
	modelFlagName        = "model"
	versionFlagName      = "version"
	globalFlagName       = "global"
	forceFlagName        = "force"
	versionTemplate      = "docsnap version: %s\n"
	defaultPath          = "."
	rootUse              = "docsnap [root]"
	rootShortDescription = "write a single-file documentation snapshot of a project"
	rootLongDescription  = `docsnap walks a project directory and writes one text report: a header,
the directory tree, the content of every documentable file grouped by category,
a listing of opaque files and summary counts.
Settings come from ~/.docsnap/config.yaml and <root>/.docsnap.yaml; flags override both.`
	rootUsageExample = `  # Document the current directory
  docsnap

  # Document ./site into a custom file and copy it to the clipboard
  docsnap ./site -o site.txt --copy

  # Include a token estimate
  docsnap --tokens --model gpt-4o`

	initUse              = "init"
	initShortDescription = "write the default configuration file"
	initLongDescription  = `Write the default configuration into ./.docsnap.yaml, or into
~/.docsnap/config.yaml with --global. An existing file is kept unless --force is given.`

	outputFlagDescription    = "report file; relative paths are resolved against the working directory"
	configFlagDescription    = "configuration file used instead of <root>/.docsnap.yaml"
	tokensFlagDescription    = "include token estimates in the summary"
	gitignoreFlagDescription = "skip paths ignored by the root .gitignore"
	modelFlagDescription     = "tokenizer model to use for token counting"
	versionFlagDescription   = "display application version"
	globalFlagDescription    = "write the global configuration instead of the local one"
	forceFlagDescription     = "overwrite an existing configuration file"

	configurationWrittenFormat = "Configuration written to %s\n"
	totalFilesMessageFormat    = "Total files processed: %d"
	failedFilesMessageFormat   = "Files with read errors: %d"
	copiedMessageFormat        = "Report copied to clipboard: %s"
	warningGitignoreMessage    = "Warning: ignoring unreadable .gitignore"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorPathMissingFormat      = "path '%s' does not exist"
	errorNotDirectoryFormat     = "path '%s' is not a directory"
	errorStatFormat             = "stat failed for '%s': %w"
	errorLoadConfigFormat       = "load configuration: %w"
	errorInvalidConfigFormat    = "invalid configuration: %w"
	errorTokenizerFormat        = "initialize tokenizer: %w"
	errorReadReportFormat       = "read report for clipboard: %w"
	errorCopyReportFormat       = "copy report to clipboard: %w"
)

// CounterFactory builds the token counter for a model.
type CounterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// Dependencies are the collaborators the commands need from the outside world.
type Dependencies struct {
	Logger     *zap.Logger
	Copier     clipboard.Copier
	NewCounter CounterFactory
	Now        func() time.Time
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.NewCounter == nil {
		dependencies.NewCounter = tokenizer.NewCounter
	}
	if dependencies.Now == nil {
		dependencies.Now = time.Now
	}
	return dependencies
}

// Execute runs the docsnap application with the process arguments.
func Execute(logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{Logger: logger})
	rootCommand.SetArgs(normalizeArguments(os.Args[1:]))
	return rootCommand.Execute()
}

// normalizeArguments rewrites space separated values of --copy, --tokens and
// --gitignore into the "--flag=value" form pflag expects.
func normalizeArguments(arguments []string) []string {
	return normalizeSwitchFlagArguments(normalizeCopyFlagArguments(arguments))
}

// reportOptions stores the flag values of the root command.
type reportOptions struct {
	outputPath        string
	configurationPath string
	tokensEnabled     bool
	respectGitignore  bool
	model             string
	copyToClipboard   bool
	showVersion       bool
}

// apply overlays explicitly set flags onto the resolved configuration.
func (options reportOptions) apply(command *cobra.Command, configuration *config.ReportConfiguration) error {
	flags := command.Flags()
	if flags.Changed(outputFlagName) {
		absoluteOutput, absoluteError := filepath.Abs(options.outputPath)
		if absoluteError != nil {
			return fmt.Errorf(errorAbsolutePathFormat, options.outputPath, absoluteError)
		}
		configuration.OutputFileName = absoluteOutput
	}
	if flags.Changed(tokensFlagName) {
		configuration.TokensEnabled = options.tokensEnabled
	}
	if flags.Changed(gitignoreFlagName) {
		configuration.RespectGitignore = options.respectGitignore
	}
	if flags.Changed(modelFlagName) {
		configuration.TokenModel = options.model
	}
	if flags.Changed(copyFlagName) {
		configuration.Clipboard = options.copyToClipboard
	}
	return nil
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	var options reportOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			rootDirectory := defaultPath
			if len(arguments) == 1 {
				rootDirectory = arguments[0]
			}
			return runReport(command, rootDirectory, options, dependencies)
		},
	}
	rootCommand.Flags().StringVarP(&options.outputPath, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	rootCommand.Flags().StringVar(&options.configurationPath, configFlagName, "", configFlagDescription)
	registerSwitchFlag(rootCommand.Flags(), &options.tokensEnabled, tokensFlagName, tokensFlagDescription)
	registerSwitchFlag(rootCommand.Flags(), &options.respectGitignore, gitignoreFlagName, gitignoreFlagDescription)
	rootCommand.Flags().StringVar(&options.model, modelFlagName, config.DefaultTokenizerModel, modelFlagDescription)
	registerCopyFlag(rootCommand.Flags(), &options.copyToClipboard)
	rootCommand.Flags().BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(createInitCommand())
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			destinationPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: workingDirectory,
			})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, destinationPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// runReport resolves the configuration for rootDirectory and writes the report.
func runReport(command *cobra.Command, rootDirectory string, options reportOptions, dependencies Dependencies) error {
	absoluteRoot, rootError := resolveRootDirectory(rootDirectory)
	if rootError != nil {
		return rootError
	}

	explicitConfigurationPath := options.configurationPath
	if explicitConfigurationPath != "" {
		absoluteConfigurationPath, absoluteError := filepath.Abs(explicitConfigurationPath)
		if absoluteError != nil {
			return fmt.Errorf(errorAbsolutePathFormat, explicitConfigurationPath, absoluteError)
		}
		explicitConfigurationPath = absoluteConfigurationPath
	}
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: absoluteRoot,
		ExplicitFilePath: explicitConfigurationPath,
	})
	if loadError != nil {
		return fmt.Errorf(errorLoadConfigFormat, loadError)
	}
	configuration := applicationConfiguration.Resolve(absoluteRoot)
	if applyError := options.apply(command, &configuration); applyError != nil {
		return applyError
	}
	if validationError := configuration.Validate(); validationError != nil {
		return fmt.Errorf(errorInvalidConfigFormat, validationError)
	}

	var tokenCounter tokenizer.Counter
	if configuration.TokensEnabled {
		counter, resolvedModel, counterError := dependencies.NewCounter(tokenizer.Config{Model: configuration.TokenModel})
		if counterError != nil {
			return fmt.Errorf(errorTokenizerFormat, counterError)
		}
		tokenCounter = counter
		configuration.TokenModel = resolvedModel
	}

	extractor, extractorError := extract.NewExtractor(absoluteRoot, configuration.FallbackEncoding, tokenCounter, dependencies.Logger)
	if extractorError != nil {
		return fmt.Errorf(errorInvalidConfigFormat, extractorError)
	}
	fileClassifier := classifier.New(configuration)
	if configuration.RespectGitignore {
		if gitignoreError := fileClassifier.LoadGitignore(); gitignoreError != nil {
			dependencies.Logger.Warn(warningGitignoreMessage, zap.Error(gitignoreError))
		}
	}
	generator := report.NewGenerator(configuration, fileClassifier, extractor, dependencies.Logger)
	generator.Now = dependencies.Now

	summary, runError := generator.Run(configuration.OutputPath())
	if runError != nil {
		return runError
	}
	dependencies.Logger.Info(fmt.Sprintf(totalFilesMessageFormat, summary.TotalFiles))
	if summary.FailedFiles > 0 {
		dependencies.Logger.Warn(fmt.Sprintf(failedFilesMessageFormat, summary.FailedFiles))
	}

	if configuration.Clipboard {
		if copyError := copyReport(dependencies.Copier, summary.OutputPath); copyError != nil {
			return copyError
		}
		dependencies.Logger.Info(fmt.Sprintf(copiedMessageFormat, summary.OutputPath))
	}
	return nil
}

func resolveRootDirectory(rootDirectory string) (string, error) {
	absoluteRoot, absoluteError := filepath.Abs(rootDirectory)
	if absoluteError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, rootDirectory, absoluteError)
	}
	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", fmt.Errorf(errorPathMissingFormat, rootDirectory)
		}
		return "", fmt.Errorf(errorStatFormat, rootDirectory, statError)
	}
	if !rootInfo.IsDir() {
		return "", fmt.Errorf(errorNotDirectoryFormat, rootDirectory)
	}
	return absoluteRoot, nil
}

func copyReport(copier clipboard.Copier, outputPath string) error {
	reportBytes, readError := os.ReadFile(outputPath)
	if readError != nil {
		return fmt.Errorf(errorReadReportFormat, readError)
	}
	if copyError := copier.Copy(string(reportBytes)); copyError != nil {
		return fmt.Errorf(errorCopyReportFormat, copyError)
	}
	return nil
}
