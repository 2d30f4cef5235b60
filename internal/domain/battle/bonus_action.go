package battle

import (
	"fmt"
)

// ResolveBonusActionSkill uses a skill bound to the bonusAction trigger. The
// bonus action is spent even when the skill's probability roll fails; the
// resulting messages are returned on the action.
func (e *Engine) ResolveBonusActionSkill(b *Battle, cmd SkillCommand) (*Battle, *Action, error) {
	if err := requireActive(b); err != nil {
		return nil, nil, err
	}

	next := b.Clone()
	user := next.Participant(cmd.ParticipantID)
	r := e.begin(next, ActionSkill, user, cmd.CommandMeta, Command{Skill: &cmd})
	r.action.Details.SkillID = cmd.SkillID

	if reason := validateActor(next, user, cmd.ParticipantID); reason != "" {
		return b, r.reject("%s", reason), nil
	}
	if user.HasUsedBonusAction {
		return b, r.reject("%s has already used their bonus action this turn", user.Name), nil
	}
	skill := user.Skill(cmd.SkillID)
	if skill == nil || skill.Stub {
		return b, r.reject("skill %s has no matching definition", cmd.SkillID), nil
	}
	var trigger *SkillTrigger
	for i := range skill.Triggers {
		if skill.Triggers[i].Event == EventBonusAction {
			trigger = &skill.Triggers[i]
			break
		}
	}
	if trigger == nil {
		return b, r.reject("%s cannot be used as a bonus action", skill.Name), nil
	}

	target := user
	if cmd.TargetID != "" {
		if target = next.Participant(cmd.TargetID); target == nil {
			return b, r.reject("target %s not found", cmd.TargetID), nil
		}
	}
	r.action.TargetIDs = []string{target.ID}

	user.HasUsedBonusAction = true
	h := hook{}
	if target.ID != user.ID {
		h.opponent = target
	}
	if r.eligible(user, skill, trigger, h) {
		r.applySkill(user, skill, trigger, h, target)
		r.action.Result = fmt.Sprintf("%s uses %s", user.Name, skill.Name)
	} else {
		r.action.Result = fmt.Sprintf("%s fails to activate %s", user.Name, skill.Name)
	}

	return next, r.commit(), nil
}
