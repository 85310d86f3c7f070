// Package rules loads and indexes the compliance rule corpus.
//
// The corpus root holds one directory per rule. Each directory has a primary
// definition document (SKILL.md by default) that may start with YAML front
// matter, and an optional references directory with one document per
// keyword:
//
//	skills/
//	    商品コピーチェック/
//	        SKILL.md
//	        references/
//	            美白.md
//	            シミ.md
//
// The front matter supplies the rule name and description:
//
//	---
//	name: 商品コピーチェック
//	description: 薬機法・景表法チェック
//	---
//	instruction body...
//
// Repository.Load discovers candidates on the local disk but fetches every
// document through a ContentSource, normally a *resolver.Resolver, so cached
// or remote copies take precedence over the local files. After Load the
// Repository is read-only.
//
// GenerateReferences builds reference documents from a tab-separated master
// sheet.
package rules
