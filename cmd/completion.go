package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_clipseal() {
    local cur prev words cword
    _init_completion || return

    local commands="seal open serve secret history compact config help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        secret)
            COMPREPLY=($(compgen -W "save forget status" -- "$cur"))
            ;;
        history)
            if [[ $cword -eq 2 ]]; then
                COMPREPLY=($(compgen -W "list show diff rm clear" -- "$cur"))
            else
                # Complete with record numbers
                local seqs
                seqs=$(clipseal history list 2>/dev/null | grep -E '^\s+[0-9]+ ' | awk '{print $1}')
                COMPREPLY=($(compgen -W "$seqs" -- "$cur"))
            fi
            ;;
        config)
            COMPREPLY=($(compgen -W "init show" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _clipseal clipseal
`

const zshCompletion = `#compdef clipseal

_clipseal() {
    local -a commands
    commands=(
        'seal:Encrypt text into an envelope'
        'open:Decrypt an envelope'
        'serve:Answer JSON-lines requests on stdin'
        'secret:Manage the secret in the OS keyring'
        'history:Inspect sealed clipboard history'
        'compact:Compact the history database'
        'config:Create or show the settings file'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'clipseal commands' commands
            ;;
        args)
            case "${words[2]}" in
                secret)
                    _values 'subcommand' save forget status
                    ;;
                history)
                    if (( CURRENT == 3 )); then
                        _values 'subcommand' list show diff rm clear
                    else
                        _clipseal_records
                    fi
                    ;;
                config)
                    _values 'subcommand' init show
                    ;;
                help)
                    _describe -t commands 'clipseal commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_clipseal_records() {
    local -a seqs
    seqs=(${(f)"$(clipseal history list 2>/dev/null | grep -E '^\s+[0-9]+ ' | awk '{print $1}')"})
    _describe -t records 'history records' seqs
}

_clipseal "$@"
`

const fishCompletion = `# clipseal fish completions

set -l commands seal open serve secret history compact config help completion

complete -c clipseal -f

# Commands
complete -c clipseal -n "not __fish_seen_subcommand_from $commands" -a seal -d 'Encrypt text'
complete -c clipseal -n "not __fish_seen_subcommand_from $commands" -a open -d 'Decrypt an envelope'
complete -c clipseal -n "not __fish_seen_subcommand_from $commands" -a serve -d 'JSON-lines IPC loop'
complete -c clipseal -n "not __fish_seen_subcommand_from $commands" -a secret -d 'Manage secret in OS keyring'
complete -c clipseal -n "not __fish_seen_subcommand_from $commands" -a history -d 'Sealed clipboard history'
complete -c clipseal -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact history database'
complete -c clipseal -n "not __fish_seen_subcommand_from $commands" -a config -d 'Settings file'
complete -c clipseal -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c clipseal -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# secret subcommands
complete -c clipseal -n "__fish_seen_subcommand_from secret" -a "save forget status"

# history subcommands
complete -c clipseal -n "__fish_seen_subcommand_from history" -a "list show diff rm clear"

# config subcommands
complete -c clipseal -n "__fish_seen_subcommand_from config" -a "init show"

# help completions
complete -c clipseal -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c clipseal -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
