// Package cli implements the ssmdeploy command-line interface.
//
// Each cobra command delegates to a workflow function (Deploy, Instances,
// Doctor) that takes its collaborators through Env, so the workflows can run
// against fakes in tests. Init only needs an output writer.
//
// # Command Structure
//
//	ssmdeploy [deploy]    - Pick an instance and run the deploy script via SSM
//	ssmdeploy instances   - List instances (table or --json)
//	ssmdeploy init        - Create .ssmdeploy.yaml
//	ssmdeploy doctor      - Check config, credentials, and AWS access
//	ssmdeploy version     - Print build information
//	ssmdeploy completion  - Generate shell completions
//
// # Deploy Workflow
//
//  1. Load and validate config
//  2. Resolve the region (--region, AWS_REGION, config, prompt)
//  3. Open the AWS session
//  4. List instances and show the picker (skipped with --instance)
//  5. Send the command, poll until it leaves Pending/InProgress
//  6. Print the report and exit with a code matching the final status
//
// # Flag Handling
//
// Global flags (--config, --verbose, --quiet, --no-color) are defined on
// the root command. The root command also takes the deploy flags, since
// running it bare deploys.
package cli
