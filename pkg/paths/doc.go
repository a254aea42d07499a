// Package paths provides path handling for dotstow.
//
// A Paths value holds the three roots the engine works with:
//
//   - Source root: the directory whose subdirectories are packages
//     (default: $DOTFILES_ROOT, else ~/dotfiles)
//   - Target root: where package contents are linked (default: the home directory)
//   - Backup root: where conflicting targets are moved (default: ~/.dotfiles-backup)
//
// Relative paths inside a package map one to one onto the target root and the
// backup root, so a file at <source>/zsh/.config/zsh/aliases is linked from
// <target>/.config/zsh/aliases and backed up to <backup>/.config/zsh/aliases.
//
// # Usage
//
//	p, err := paths.New(paths.Roots{})  // all defaults
//	if err != nil {
//	    return err
//	}
//
//	p.PackagePath("zsh")         // /home/user/dotfiles/zsh
//	p.TargetPath(".zshrc")       // /home/user/.zshrc
//	p.BackupPath(".zshrc")       // /home/user/.dotfiles-backup/.zshrc
package paths
